package services

import "errors"

// Error kinds surfaced to the API layer. Controllers translate these to
// transport codes; anything not matching is treated as a storage failure
// and surfaced as a server error.
var (
	ErrNotFound        = errors.New("not found")
	ErrRuleViolation   = errors.New("rule violation")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
)
