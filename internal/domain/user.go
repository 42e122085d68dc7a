package domain

import (
	"strings"
	"time"
)

// Role is the authorization role carried by a user and its access tokens.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole normalizes a stored or decoded role. Anything that is not ADMIN is a plain user.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

// IsAdmin reports whether the role grants administrative access.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// Gender is an optional profile attribute.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// User is the domain model for bookstore customers and administrators.
type User struct {
	ID           int64      `json:"id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Gender       *Gender    `json:"gender,omitempty"`
	Role         Role       `json:"role"`
	PasswordHash string     `json:"-"`
	RefreshToken *string    `json:"-"`
	BannedAt     *time.Time `json:"bannedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// Banned reports whether an administrator suspended the account.
func (u *User) Banned() bool {
	return u != nil && u.BannedAt != nil
}

// UserRef is the compact user projection embedded in other resources.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
