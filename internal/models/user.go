package models

import (
	"strings"
	"time"
)

// User is an authenticated account. A user creates outings (Outing.CreatedBy)
// and is usually also one of the people on them, but people on an outing do
// not need accounts.
type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PasswordHash string `json:"-"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

// NewUser builds a user. Email is normalized to lower case.
func NewUser(id, email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           id,
		Email:        NormalizeEmail(email),
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NormalizeEmail trims and lower-cases an address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
