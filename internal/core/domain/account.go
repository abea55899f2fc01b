package domain

import (
	"errors"
	"strings"
	"time"
)

// Role is the single capability tag carried by every account.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
	RoleClient   Role = "client"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleClient:
		return true
	}
	return false
}

// MinPasswordLength is the shortest password accepted for an account.
const MinPasswordLength = 6

var ErrAccountNotFound = errors.New("account not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrAccountInactive = errors.New("account has been deactivated")
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// Account models an authenticated identity.
type Account struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	Role           Role       `json:"role"`
	Phone          string     `json:"phone,omitempty"`
	CompanyName    string     `json:"companyName,omitempty"`
	ProfilePicture string     `json:"profilePicture,omitempty"`
	IsActive       bool       `json:"isActive"`
	LastLogin      *time.Time `json:"lastLogin,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Profile is the public view of an account shown to other accounts.
type Profile struct {
	ID             string `json:"id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Role           Role   `json:"role"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:             a.ID,
		FirstName:      a.FirstName,
		LastName:       a.LastName,
		Email:          a.Email,
		Role:           a.Role,
		ProfilePicture: a.ProfilePicture,
	}
}

// NormalizeEmail lowercases and trims an email so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Actor is the authenticated caller of a use case.
type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool    { return a.Role == RoleAdmin }
func (a Actor) IsEmployee() bool { return a.Role == RoleEmployee }
func (a Actor) IsClient() bool   { return a.Role == RoleClient }
