package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrProjectNotFound      = errors.New("project not found in this workspace")
	ErrDuplicateProjectName = errors.New("project name must be unique within the workspace")
)

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

// Create adds a project to a workspace. Project names are unique within
// their workspace; workspace names are not.
func (s *ProjectService) Create(ctx context.Context, workspaceID, userID uuid.UUID, name string, description, emoji *string) (*models.Project, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM workspaces WHERE id = $1)
	`, workspaceID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up workspace: %w", err)
	}
	if !exists {
		return nil, ErrWorkspaceNotFound
	}

	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM projects WHERE workspace_id = $1 AND name = $2)
	`, workspaceID, name).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateProjectName
	}

	var project models.Project
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (workspace_id, name, description, emoji, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, workspace_id, name, description, emoji, created_by, created_at, updated_at
	`, workspaceID, name, description, emoji, userID).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.Emoji, &project.CreatedByID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// List returns a page of workspace projects, newest first, plus the total
// page count.
func (s *ProjectService) List(ctx context.Context, workspaceID uuid.UUID, pageNumber, pageSize int) ([]models.Project, int64, int, error) {
	var totalCount int64
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM projects WHERE workspace_id = $1
	`, workspaceID).Scan(&totalCount)
	if err != nil {
		return nil, 0, 0, err
	}

	offset := (pageNumber - 1) * pageSize
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, workspace_id, name, description, emoji, created_by, created_at, updated_at
		FROM projects
		WHERE workspace_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, workspaceID, pageSize, offset)
	if err != nil {
		return nil, 0, 0, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ID, &p.WorkspaceID, &p.Name, &p.Description, &p.Emoji, &p.CreatedByID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, 0, err
		}
		projects = append(projects, p)
	}

	totalPages := int(math.Ceil(float64(totalCount) / float64(pageSize)))
	return projects, totalCount, totalPages, rows.Err()
}

func (s *ProjectService) GetByID(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, workspace_id, name, description, emoji, created_by, created_at, updated_at
		FROM projects WHERE id = $1 AND workspace_id = $2
	`, projectID, workspaceID).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.Emoji, &project.CreatedByID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

func (s *ProjectService) Update(ctx context.Context, workspaceID, projectID uuid.UUID, name string, description, emoji *string) (*models.Project, error) {
	if _, err := s.GetByID(ctx, workspaceID, projectID); err != nil {
		return nil, err
	}

	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM projects WHERE workspace_id = $1 AND name = $2 AND id <> $3)
	`, workspaceID, name, projectID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateProjectName
	}

	var project models.Project
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE projects SET name = $1, description = $2, emoji = $3, updated_at = NOW()
		WHERE id = $4 AND workspace_id = $5
		RETURNING id, workspace_id, name, description, emoji, created_by, created_at, updated_at
	`, name, description, emoji, projectID, workspaceID).Scan(
		&project.ID, &project.WorkspaceID, &project.Name, &project.Description,
		&project.Emoji, &project.CreatedByID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// Delete removes a project and its tasks in one transaction, tasks first.
func (s *ProjectService) Delete(ctx context.Context, workspaceID, projectID uuid.UUID) error {
	if _, err := s.GetByID(ctx, workspaceID, projectID); err != nil {
		return err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete project tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return tx.Commit(ctx)
}

// Analytics is the project-scoped task aggregate.
func (s *ProjectService) Analytics(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.WorkspaceAnalytics, error) {
	if _, err := s.GetByID(ctx, workspaceID, projectID); err != nil {
		return nil, err
	}

	var a models.WorkspaceAnalytics
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE due_date < NOW() AND status <> 'DONE'),
		       COUNT(*) FILTER (WHERE status = 'DONE')
		FROM tasks WHERE project_id = $1
	`, projectID).Scan(&a.TotalTasks, &a.OverdueTasks, &a.CompletedTasks)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
