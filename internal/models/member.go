package models

import (
	"time"

	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/google/uuid"
)

// Member links a user to a workspace with a role. A user holds at most one
// membership per workspace.
type Member struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        rbac.Role `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	User        *User     `json:"user,omitempty"`
}
