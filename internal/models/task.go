package models

import (
	"time"

	"github.com/google/uuid"
)

// Task statuses
const (
	TaskStatusBacklog    = "BACKLOG"
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusInReview   = "IN_REVIEW"
	TaskStatusDone       = "DONE"
)

// Task priorities
const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

type Task struct {
	ID           uuid.UUID  `json:"id"`
	TaskCode     string     `json:"task_code"`
	Title        string     `json:"title"`
	Description  *string    `json:"description,omitempty"`
	ProjectID    uuid.UUID  `json:"project_id"`
	WorkspaceID  uuid.UUID  `json:"workspace_id"`
	Status       string     `json:"status"`
	Priority     string     `json:"priority"`
	AssignedToID uuid.UUID  `json:"assigned_to_id"`
	CreatedByID  uuid.UUID  `json:"created_by_id"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusInReview, TaskStatusDone:
		return true
	}
	return false
}

func ValidTaskPriority(p string) bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}
