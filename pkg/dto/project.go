package dto

import "github.com/google/uuid"

type CreateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
}

type UpdateProjectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Emoji       *string `json:"emoji,omitempty"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Emoji       *string   `json:"emoji,omitempty"`
}

type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	TotalCount int64             `json:"total_count"`
	TotalPages int               `json:"total_pages"`
}
