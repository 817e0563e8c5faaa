package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrTaskNotFound       = errors.New("task not found")
	ErrDuplicateTaskTitle = errors.New("task title must be unique within the project")
	ErrAssigneeNotMember  = errors.New("assigned user is not a member of this workspace")
)

type TaskService struct {
	db *database.DB
}

func NewTaskService(db *database.DB) *TaskService {
	return &TaskService{db: db}
}

type TaskInput struct {
	Title       string
	Description *string
	Status      string
	Priority    string
	AssignedTo  *uuid.UUID
	DueDate     *time.Time
}

type TaskFilters struct {
	ProjectID  *uuid.UUID
	Status     []string
	Priority   []string
	AssignedTo []uuid.UUID
	Keyword    string
}

func (s *TaskService) assigneeIsMember(ctx context.Context, workspaceID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM members WHERE workspace_id = $1 AND user_id = $2)
	`, workspaceID, userID).Scan(&exists)
	return exists, err
}

// Create adds a task to a project. Unassigned tasks default to the creator.
func (s *TaskService) Create(ctx context.Context, workspaceID, projectID, userID uuid.UUID, input TaskInput) (*models.Task, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM projects WHERE id = $1 AND workspace_id = $2)
	`, projectID, workspaceID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrProjectNotFound
	}

	assignee := userID
	if input.AssignedTo != nil {
		isMember, err := s.assigneeIsMember(ctx, workspaceID, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrAssigneeNotMember
		}
		assignee = *input.AssignedTo
	}

	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM tasks WHERE project_id = $1 AND title = $2)
	`, projectID, input.Title).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateTaskTitle
	}

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}
	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	var task models.Task
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date, created_at, updated_at
	`, NewTaskCode(), input.Title, input.Description, projectID, workspaceID, status, priority, assignee, userID, input.DueDate).Scan(
		&task.ID, &task.TaskCode, &task.Title, &task.Description, &task.ProjectID,
		&task.WorkspaceID, &task.Status, &task.Priority, &task.AssignedToID,
		&task.CreatedByID, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, workspaceID, projectID, taskID uuid.UUID, input TaskInput) (*models.Task, error) {
	existing, err := s.GetByID(ctx, workspaceID, projectID, taskID)
	if err != nil {
		return nil, err
	}

	assignee := existing.AssignedToID
	if input.AssignedTo != nil {
		isMember, err := s.assigneeIsMember(ctx, workspaceID, *input.AssignedTo)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, ErrAssigneeNotMember
		}
		assignee = *input.AssignedTo
	}

	status := input.Status
	if status == "" {
		status = existing.Status
	}
	priority := input.Priority
	if priority == "" {
		priority = existing.Priority
	}

	var task models.Task
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, priority = $4, assigned_to = $5, due_date = $6, updated_at = NOW()
		WHERE id = $7
		RETURNING id, task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date, created_at, updated_at
	`, input.Title, input.Description, status, priority, assignee, input.DueDate, taskID).Scan(
		&task.ID, &task.TaskCode, &task.Title, &task.Description, &task.ProjectID,
		&task.WorkspaceID, &task.Status, &task.Priority, &task.AssignedToID,
		&task.CreatedByID, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// List returns workspace tasks matching the filters, newest first, paginated.
func (s *TaskService) List(ctx context.Context, workspaceID uuid.UUID, filters TaskFilters, pageNumber, pageSize int) ([]models.Task, int64, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM workspaces WHERE id = $1)
	`, workspaceID).Scan(&exists)
	if err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, ErrWorkspaceNotFound
	}

	where := []string{"workspace_id = $1"}
	args := []any{workspaceID}

	addArg := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}

	if filters.ProjectID != nil {
		addArg("project_id = $%d", *filters.ProjectID)
	}
	if len(filters.Status) > 0 {
		addArg("status = ANY($%d)", filters.Status)
	}
	if len(filters.Priority) > 0 {
		addArg("priority = ANY($%d)", filters.Priority)
	}
	if len(filters.AssignedTo) > 0 {
		addArg("assigned_to = ANY($%d)", filters.AssignedTo)
	}
	if filters.Keyword != "" {
		addArg("title ILIKE $%d", "%"+filters.Keyword+"%")
	}

	whereClause := strings.Join(where, " AND ")

	var totalCount int64
	err = s.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE `+whereClause, args...).Scan(&totalCount)
	if err != nil {
		return nil, 0, err
	}

	args = append(args, pageSize, (pageNumber-1)*pageSize)
	query := fmt.Sprintf(`
		SELECT id, task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date, created_at, updated_at
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)-1, len(args))

	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		var t models.Task
		if err := rows.Scan(
			&t.ID, &t.TaskCode, &t.Title, &t.Description, &t.ProjectID,
			&t.WorkspaceID, &t.Status, &t.Priority, &t.AssignedToID,
			&t.CreatedByID, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, totalCount, rows.Err()
}

func (s *TaskService) GetByID(ctx context.Context, workspaceID, projectID, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date, created_at, updated_at
		FROM tasks WHERE id = $1 AND project_id = $2 AND workspace_id = $3
	`, taskID, projectID, workspaceID).Scan(
		&task.ID, &task.TaskCode, &task.Title, &task.Description, &task.ProjectID,
		&task.WorkspaceID, &task.Status, &task.Priority, &task.AssignedToID,
		&task.CreatedByID, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) Delete(ctx context.Context, workspaceID, taskID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM tasks WHERE id = $1 AND workspace_id = $2
	`, taskID, workspaceID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrTaskNotFound
	}
	return nil
}
