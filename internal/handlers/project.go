package handlers

import (
	"context"
	"strconv"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type ProjectHandler struct {
	projectService ProjectServiceInterface
	memberService  MemberServiceInterface
	guard          *rbac.Guard
}

func NewProjectHandler(projectService ProjectServiceInterface, memberService MemberServiceInterface, guard *rbac.Guard) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		memberService:  memberService,
		guard:          guard,
	}
}

func projectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: p.Description,
		Emoji:       p.Emoji,
	}
}

func pageParams(c *drift.Context) (int, int) {
	pageNumber := 1
	pageSize := 10
	if v, err := strconv.Atoi(c.QueryParam("pageNumber")); err == nil && v > 0 {
		pageNumber = v
	}
	if v, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && v > 0 {
		pageSize = v
	}
	return pageNumber, pageSize
}

func (h *ProjectHandler) Create(c *drift.Context) {
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

	var req dto.CreateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Name == "" {
		c.BadRequest("name is required")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermCreateProject) {
		return
	}

	project, err := h.projectService.Create(context.Background(), workspaceID, userID, req.Name, req.Description, req.Emoji)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, projectResponse(project))
}

func (h *ProjectHandler) List(c *drift.Context) {
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

	pageNumber, pageSize := pageParams(c)

	projects, total, totalPages, err := h.projectService.List(context.Background(), workspaceID, pageNumber, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := dto.ProjectListResponse{
		Projects:   make([]dto.ProjectResponse, len(projects)),
		TotalCount: total,
		TotalPages: totalPages,
	}
	for i, p := range projects {
		response.Projects[i] = projectResponse(&p)
	}

	_ = c.JSON(200, response)
}

func (h *ProjectHandler) Get(c *drift.Context) {
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

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	project, err := h.projectService.GetByID(context.Background(), workspaceID, projectID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, projectResponse(project))
}

func (h *ProjectHandler) Analytics(c *drift.Context) {
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

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	analytics, err := h.projectService.Analytics(context.Background(), workspaceID, projectID)
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

func (h *ProjectHandler) Update(c *drift.Context) {
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

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	var req dto.UpdateProjectRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermEditProject) {
		return
	}

	project, err := h.projectService.Update(context.Background(), workspaceID, projectID, req.Name, req.Description, req.Emoji)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, projectResponse(project))
}

func (h *ProjectHandler) Delete(c *drift.Context) {
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

	projectID, err := uuid.Parse(c.Param("projectId"))
	if err != nil {
		c.BadRequest("invalid project id")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermDeleteProject) {
		return
	}

	if err := h.projectService.Delete(context.Background(), workspaceID, projectID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "project deleted"})
}
