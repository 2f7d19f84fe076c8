package domain

import (
	"strings"
	"time"
)

const (
	RoleFinquero    = "finquero"
	RoleVeterinario = "veterinario"
)

// User models a registered person. Email is the identity and is compared
// case-insensitively.
type User struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"password"`
	Role         string    `json:"role"`
	CompanyID    string    `json:"companyId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Actor is the caller identity threaded explicitly through every operation.
type Actor struct {
	Email string
	Name  string
	Role  string
}

// Actor returns the identity of u.
func (u User) Actor() Actor {
	return Actor{Email: u.Email, Name: u.Name, Role: u.Role}
}

// SameEmail reports whether a and b name the same user.
func SameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// Session is the persisted login state restored across reloads.
type Session struct {
	User     User      `json:"user"`
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issuedAt"`
}
