package handlers

import (
	"context"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type MemberHandler struct {
	memberService MemberServiceInterface
	guard         *rbac.Guard
}

func NewMemberHandler(memberService MemberServiceInterface, guard *rbac.Guard) *MemberHandler {
	return &MemberHandler{
		memberService: memberService,
		guard:         guard,
	}
}

// Join needs no permission check: possession of the invite code is the
// credential. Membership races resolve in the database.
func (h *MemberHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	inviteCode := c.Param("inviteCode")
	if inviteCode == "" {
		c.BadRequest("invite code is required")
		return
	}

	workspaceID, role, err := h.memberService.Join(context.Background(), inviteCode, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.JoinWorkspaceResponse{
		WorkspaceID: workspaceID,
		Role:        string(role),
	})
}

func (h *MemberHandler) ChangeRole(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaceID, err := uuid.Parse(c.Param("workspaceId"))
	if err != nil {
		c.BadRequest("invalid workspace id")
		return
	}

	var req dto.ChangeMemberRoleRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.MemberID == uuid.Nil {
		c.BadRequest("memberId is required")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermChangeMemberRole) {
		return
	}

	member, err := h.memberService.ChangeRole(context.Background(), workspaceID, req.MemberID, req.Role)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.MemberResponse{
		ID:     member.ID,
		UserID: member.UserID,
		Role:   string(member.Role),
	})
}
