package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	AssignedTo  *uuid.UUID `json:"assigned_to,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest = CreateTaskRequest

type TaskResponse struct {
	ID          uuid.UUID  `json:"id"`
	TaskCode    string     `json:"task_code"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	ProjectID   uuid.UUID  `json:"project_id"`
	WorkspaceID uuid.UUID  `json:"workspace_id"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	AssignedTo  uuid.UUID  `json:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type TaskListResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	TotalCount int64          `json:"total_count"`
}
