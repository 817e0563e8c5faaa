package handlers

import (
	"context"
	"strings"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TaskHandler struct {
	taskService   TaskServiceInterface
	memberService MemberServiceInterface
	guard         *rbac.Guard
}

func NewTaskHandler(taskService TaskServiceInterface, memberService MemberServiceInterface, guard *rbac.Guard) *TaskHandler {
	return &TaskHandler{
		taskService:   taskService,
		memberService: memberService,
		guard:         guard,
	}
}

func taskResponse(t *models.Task) dto.TaskResponse {
	return dto.TaskResponse{
		ID:          t.ID,
		TaskCode:    t.TaskCode,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		WorkspaceID: t.WorkspaceID,
		Status:      t.Status,
		Priority:    t.Priority,
		AssignedTo:  t.AssignedToID,
		DueDate:     t.DueDate,
	}
}

func taskInput(req dto.CreateTaskRequest) services.TaskInput {
	return services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
	}
}

func validateTaskInput(c *drift.Context, req dto.CreateTaskRequest) bool {
	if req.Title == "" {
		c.BadRequest("title is required")
		return false
	}
	if req.Status != "" && !models.ValidTaskStatus(req.Status) {
		c.BadRequest("invalid status")
		return false
	}
	if req.Priority != "" && !models.ValidTaskPriority(req.Priority) {
		c.BadRequest("invalid priority")
		return false
	}
	return true
}

func (h *TaskHandler) Create(c *drift.Context) {
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

	var req dto.CreateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if !validateTaskInput(c, req) {
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermCreateTask) {
		return
	}

	task, err := h.taskService.Create(context.Background(), workspaceID, projectID, userID, taskInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(201, taskResponse(task))
}

func (h *TaskHandler) Update(c *drift.Context) {
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

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	var req dto.UpdateTaskRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if !validateTaskInput(c, req) {
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermEditTask) {
		return
	}

	task, err := h.taskService.Update(context.Background(), workspaceID, projectID, taskID, taskInput(req))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, taskResponse(task))
}

// splitParam turns a comma separated query value into its parts,
// dropping empty segments.
func splitParam(value string) []string {
	if value == "" {
		return nil
	}
	var parts []string
	for _, p := range strings.Split(value, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func (h *TaskHandler) List(c *drift.Context) {
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

	filters := services.TaskFilters{
		Status:   splitParam(c.QueryParam("status")),
		Priority: splitParam(c.QueryParam("priority")),
		Keyword:  c.QueryParam("keyword"),
	}
	if raw := c.QueryParam("projectId"); raw != "" {
		projectID, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid project id")
			return
		}
		filters.ProjectID = &projectID
	}
	for _, raw := range splitParam(c.QueryParam("assignedTo")) {
		assigneeID, err := uuid.Parse(raw)
		if err != nil {
			c.BadRequest("invalid assignee id")
			return
		}
		filters.AssignedTo = append(filters.AssignedTo, assigneeID)
	}

	pageNumber, pageSize := pageParams(c)

	tasks, total, err := h.taskService.List(context.Background(), workspaceID, filters, pageNumber, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response := dto.TaskListResponse{
		Tasks:      make([]dto.TaskResponse, len(tasks)),
		TotalCount: total,
	}
	for i, t := range tasks {
		response.Tasks[i] = taskResponse(&t)
	}

	_ = c.JSON(200, response)
}

func (h *TaskHandler) Get(c *drift.Context) {
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

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermViewOnly) {
		return
	}

	task, err := h.taskService.GetByID(context.Background(), workspaceID, projectID, taskID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, taskResponse(task))
}

func (h *TaskHandler) Delete(c *drift.Context) {
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

	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.BadRequest("invalid task id")
		return
	}

	if !requirePermissions(c, h.memberService, h.guard, userID, workspaceID, rbac.PermDeleteTask) {
		return
	}

	if err := h.taskService.Delete(context.Background(), workspaceID, taskID); err != nil {
		respondServiceError(c, err)
		return
	}

	_ = c.JSON(200, map[string]string{"message": "task deleted"})
}
