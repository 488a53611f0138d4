package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the authorization tier of an account. Stored as a string column
// but treated as a closed enum everywhere; unknown input is rejected at the
// boundary instead of silently defaulting.
type Role string

const (
	RoleUser  Role = "User"
	RoleAdmin Role = "Admin"
)

// ParseRole maps free text to a Role, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, nil
	case "admin":
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      Role      `gorm:"size:20;not null;default:'User'" json:"role"`
	Points    int       `gorm:"not null;default:0" json:"points"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
