package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// GoogleID is the subject of the user's Google account, if known.
	GoogleID string

	// Name is the display name of the user.
	Name string

	// Email is the user's email address (unique).
	Email string

	// Avatar is a URL to the user's profile picture.
	Avatar string

	// CreatedAt is the Unix timestamp when the user was first seen.
	CreatedAt int64
}

// NewUser creates a user with a fresh ID and creation time.
func NewUser(email, name, avatar string) *User {
	return &User{
		ID:        uuid.New().String(),
		Name:      name,
		Email:     email,
		Avatar:    avatar,
		CreatedAt: time.Now().Unix(),
	}
}
