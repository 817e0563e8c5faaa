package dto

import "github.com/google/uuid"

type JoinWorkspaceResponse struct {
	WorkspaceID uuid.UUID `json:"workspace_id"`
	Role        string    `json:"role"`
}

type ChangeMemberRoleRequest struct {
	MemberID uuid.UUID `json:"member_id"`
	Role     string    `json:"role"`
}

type MemberResponse struct {
	ID     uuid.UUID     `json:"id"`
	UserID uuid.UUID     `json:"user_id"`
	Role   string        `json:"role"`
	User   *UserResponse `json:"user,omitempty"`
}
