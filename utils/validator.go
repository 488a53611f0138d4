package utils

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
)

// Minimal internal validator to avoid an external dependency. Supports:
// - required
// - username (letters, digits, underscore, 3-50 chars)
// - pwdmin (min length 4)
// - eqfield=OtherField (field equals another field)

var reUsername = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)

// ValidateStruct inspects struct tags `validate:"..."` and returns the first
// error encountered.
func ValidateStruct(s interface{}) error {
	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return errors.New("ValidateStruct expects a struct or pointer to struct")
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" {
			continue
		}
		parts := strings.Split(tag, ",")
		fv := v.Field(i)
		var sval string
		if fv.IsValid() && fv.Kind() == reflect.String {
			sval = fv.String()
		}
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p == "required" {
				if sval == "" {
					return errors.New(field.Name + " is required")
				}
			} else if p == "username" {
				if sval != "" && !reUsername.MatchString(sval) {
					return errors.New(field.Name + " must be 3-50 characters of letters, digits or underscore")
				}
			} else if p == "pwdmin" {
				if len(sval) < 4 {
					return errors.New(field.Name + " must be at least 4 characters")
				}
			} else if strings.HasPrefix(p, "eqfield=") {
				other := strings.TrimPrefix(p, "eqfield=")
				of := v.FieldByName(other)
				if of.IsValid() && of.Kind() == reflect.String {
					if sval != of.String() {
						return errors.New(field.Name + " must equal " + other)
					}
				}
			}
		}
	}
	return nil
}
