package handlers

import (
	"context"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type WorkspaceHandler struct {
	workspaceService WorkspaceServiceInterface
	memberService    MemberServiceInterface
	guard            *rbac.Guard
}

func NewWorkspaceHandler(workspaceService WorkspaceServiceInterface, memberService MemberServiceInterface, guard *rbac.Guard) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
		memberService:    memberService,
		guard:            guard,
	}
}

func workspaceResponse(w *models.Workspace, role rbac.Role) dto.WorkspaceResponse {
	return dto.WorkspaceResponse{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		InviteCode:  w.InviteCode,
		OwnerID:     w.OwnerID,
		Role:        string(role),
	}
}

func memberResponses(members []models.Member) []dto.MemberResponse {
	response := make([]dto.MemberResponse, len(members))
	for i, m := range members {
		response[i] = dto.MemberResponse{
			ID:     m.ID,
			UserID: m.UserID,
			Role:   string(m.Role),
		}
		if m.User != nil {
			response[i].User = &dto.UserResponse{
				ID:                 m.User.ID,
				Email:              m.User.Email,
				Name:               m.User.Name,
				ProfilePicture:     m.User.ProfilePicture,
				Provider:           m.User.Provider,
				CurrentWorkspaceID: m.User.CurrentWorkspaceID,
			}
		}
	}
	return response
}

func (h *WorkspaceHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	workspace, err := h.workspaceService.Create(context.Background(), userID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, workspaceResponse(workspace, rbac.RoleOwner))
}

func (h *WorkspaceHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	workspaces, roles, err := h.workspaceService.GetUserWorkspaces(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get workspaces")
		return
	}

	response := make([]dto.WorkspaceResponse, len(workspaces))
	for i, w := range workspaces {
		response[i] = workspaceResponse(&w, roles[i])
	}

	_ = c.JSON(200, response)
}

func (h *WorkspaceHandler) Get(c *drift.Context) {
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

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	ctx := context.Background()

	workspace, err := h.workspaceService.GetByID(ctx, workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	members, err := h.workspaceService.GetMembers(ctx, workspaceID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	_ = c.JSON(200, map[string]any{
		"workspace": workspaceResponse(workspace, ""),
		"members":   memberResponses(members),
	})
}

func (h *WorkspaceHandler) GetMembers(c *drift.Context) {
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

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	members, err := h.workspaceService.GetMembers(context.Background(), workspaceID)
	if err != nil {
		c.InternalServerError("failed to get members")
		return
	}

	_ = c.JSON(200, memberResponses(members))
}

func (h *WorkspaceHandler) Analytics(c *drift.Context) {
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

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	analytics, err := h.workspaceService.Analytics(context.Background(), workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.WorkspaceAnalyticsResponse{
		TotalTasks:     analytics.TotalTasks,
		OverdueTasks:   analytics.OverdueTasks,
		CompletedTasks: analytics.CompletedTasks,
	})
}

func (h *WorkspaceHandler) Update(c *drift.Context) {
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

	var req dto.UpdateWorkspaceRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermEditWorkspace) {
		return
	}

	workspace, err := h.workspaceService.Update(context.Background(), workspaceID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, workspaceResponse(workspace, ""))
}

func (h *WorkspaceHandler) Delete(c *drift.Context) {
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

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermDeleteWorkspace) {
		return
	}

	// The service re-checks raw ownership; the permission check above can
	// pass for a role-changed non-owner and still be refused there.
	newCurrent, err := h.workspaceService.Delete(context.Background(), workspaceID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, dto.DeleteWorkspaceResponse{
		Message:            "workspace deleted",
		CurrentWorkspaceID: newCurrent,
	})
}
