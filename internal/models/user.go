package models

import (
	"time"

	"github.com/google/uuid"
)

// Auth providers
const (
	ProviderEmail  = "email"
	ProviderGoogle = "google"
)

type User struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Name               string     `json:"name"`
	PasswordHash       *string    `json:"-"`
	ProfilePicture     *string    `json:"profile_picture,omitempty"`
	Provider           string     `json:"provider"`
	ProviderID         *string    `json:"-"`
	CurrentWorkspaceID *uuid.UUID `json:"current_workspace_id,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

func (u *User) IsLocal() bool {
	return u.Provider == ProviderEmail
}
