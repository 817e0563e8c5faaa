package dto

import "github.com/google/uuid"

type CreateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type UpdateWorkspaceRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

type WorkspaceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	InviteCode  string    `json:"invite_code"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Role        string    `json:"role,omitempty"`
}

type DeleteWorkspaceResponse struct {
	Message            string     `json:"message"`
	CurrentWorkspaceID *uuid.UUID `json:"current_workspace_id,omitempty"`
}

type WorkspaceAnalyticsResponse struct {
	TotalTasks     int64 `json:"total_tasks"`
	OverdueTasks   int64 `json:"overdue_tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
}
