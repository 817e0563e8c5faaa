package models

import (
	"time"

	"github.com/google/uuid"
)

type Workspace struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	OwnerID     uuid.UUID `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// WorkspaceAnalytics is the read-only task aggregate for a workspace.
type WorkspaceAnalytics struct {
	TotalTasks     int64 `json:"total_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
}
