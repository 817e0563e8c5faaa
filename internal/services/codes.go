package services

import (
	"strings"

	"github.com/google/uuid"
)

// shortCode returns a compact unique code derived from a v4 uuid.
func shortCode(length int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:length]
}

// NewInviteCode generates a workspace invite code.
func NewInviteCode() string {
	return shortCode(7)
}

// NewTaskCode generates a short task identifier shown in task lists.
func NewTaskCode() string {
	return shortCode(6)
}
