package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrRoleNotFound      = errors.New("role not found in catalog")
	ErrNotOwner          = errors.New("only the workspace owner can do this")
)

type WorkspaceService struct {
	db      *database.DB
	catalog rbac.Catalog
}

func NewWorkspaceService(db *database.DB, catalog rbac.Catalog) *WorkspaceService {
	return &WorkspaceService{db: db, catalog: catalog}
}

// Create makes a new workspace owned by ownerID. The workspace row, the OWNER
// membership and the creator's current-workspace pointer are written in one
// transaction.
func (s *WorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Workspace, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)
	`, ownerID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	if _, ok := s.catalog.Permissions(rbac.RoleOwner); !ok {
		return nil, ErrRoleNotFound
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var workspace models.Workspace
	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, description, invite_code, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, description, invite_code, owner_id, created_at, updated_at
	`, name, description, NewInviteCode(), ownerID).Scan(
		&workspace.ID, &workspace.Name, &workspace.Description,
		&workspace.InviteCode, &workspace.OwnerID, &workspace.CreatedAt, &workspace.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role_name)
		VALUES ($1, $2, $3)
	`, ownerID, workspace.ID, string(rbac.RoleOwner))
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET current_workspace_id = $1, updated_at = NOW() WHERE id = $2
	`, workspace.ID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update current workspace: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &workspace, nil
}

func (s *WorkspaceService) GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, description, invite_code, owner_id, created_at, updated_at
		FROM workspaces WHERE id = $1
	`, workspaceID).Scan(
		&workspace.ID, &workspace.Name, &workspace.Description,
		&workspace.InviteCode, &workspace.OwnerID, &workspace.CreatedAt, &workspace.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

// GetUserWorkspaces lists every workspace the user is a member of, newest
// first, along with the user's role in each.
func (s *WorkspaceService) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []rbac.Role, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT w.id, w.name, w.description, w.invite_code, w.owner_id, w.created_at, w.updated_at, m.role_name
		FROM workspaces w
		JOIN members m ON w.id = m.workspace_id
		WHERE m.user_id = $1
		ORDER BY w.created_at DESC
	`, userID)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	var workspaces []models.Workspace
	var roles []rbac.Role
	for rows.Next() {
		var w models.Workspace
		var role string
		if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.InviteCode, &w.OwnerID, &w.CreatedAt, &w.UpdatedAt, &role); err != nil {
			return nil, nil, err
		}
		workspaces = append(workspaces, w)
		roles = append(roles, rbac.Role(role))
	}
	return workspaces, roles, rows.Err()
}

// Update changes the workspace name and description. Blank values keep the
// stored ones, so an update never nulls out a name.
func (s *WorkspaceService) Update(ctx context.Context, workspaceID uuid.UUID, name string, description *string) (*models.Workspace, error) {
	var workspace models.Workspace
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE workspaces
		SET name = COALESCE(NULLIF($1, ''), name),
		    description = COALESCE($2, description),
		    updated_at = NOW()
		WHERE id = $3
		RETURNING id, name, description, invite_code, owner_id, created_at, updated_at
	`, name, description, workspaceID).Scan(
		&workspace.ID, &workspace.Name, &workspace.Description,
		&workspace.InviteCode, &workspace.OwnerID, &workspace.CreatedAt, &workspace.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}
	return &workspace, nil
}

// Delete removes a workspace and everything in it. Only the owning user may
// delete; ownership is the owner_id identity check, deliberately independent
// of the requester's current member role. Tasks, projects and members go
// before the workspace row so referential constraints hold at every step, and
// the owner's current-workspace pointer is repointed to any remaining
// membership, all in one transaction. Returns the new current workspace id,
// nil when none remains.
func (s *WorkspaceService) Delete(ctx context.Context, workspaceID, requesterID uuid.UUID) (*uuid.UUID, error) {
	workspace, err := s.GetByID(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if workspace.OwnerID != requesterID {
		return nil, ErrNotOwner
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM tasks WHERE workspace_id = $1`, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to delete tasks: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM projects WHERE workspace_id = $1`, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to delete projects: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM members WHERE workspace_id = $1`, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to delete members: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM workspaces WHERE id = $1`, workspaceID); err != nil {
		return nil, fmt.Errorf("failed to delete workspace: %w", err)
	}

	var currentID *uuid.UUID
	err = tx.QueryRow(ctx, `SELECT current_workspace_id FROM users WHERE id = $1`, requesterID).Scan(&currentID)
	if err != nil {
		return nil, fmt.Errorf("failed to read current workspace: %w", err)
	}

	if currentID != nil && *currentID == workspaceID {
		currentID = nil
		var remaining uuid.UUID
		err = tx.QueryRow(ctx, `
			SELECT workspace_id FROM members WHERE user_id = $1 LIMIT 1
		`, requesterID).Scan(&remaining)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to find remaining membership: %w", err)
		}
		if err == nil {
			currentID = &remaining
		}

		if _, err := tx.Exec(ctx, `
			UPDATE users SET current_workspace_id = $1, updated_at = NOW() WHERE id = $2
		`, currentID, requesterID); err != nil {
			return nil, fmt.Errorf("failed to repoint current workspace: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return currentID, nil
}

func (s *WorkspaceService) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT m.id, m.user_id, m.workspace_id, m.role_name, m.created_at,
		       u.id, u.email, u.name, u.profile_picture, u.provider, u.current_workspace_id, u.created_at, u.updated_at
		FROM members m
		JOIN users u ON m.user_id = u.id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at
	`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []models.Member
	for rows.Next() {
		var member models.Member
		var user models.User
		var role string
		if err := rows.Scan(
			&member.ID, &member.UserID, &member.WorkspaceID, &role, &member.CreatedAt,
			&user.ID, &user.Email, &user.Name, &user.ProfilePicture, &user.Provider,
			&user.CurrentWorkspaceID, &user.CreatedAt, &user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		member.Role = rbac.Role(role)
		member.User = &user
		members = append(members, member)
	}
	return members, rows.Err()
}

// Analytics returns the task aggregate for a workspace. Overdue means the due
// date has passed and the task is not DONE.
func (s *WorkspaceService) Analytics(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceAnalytics, error) {
	if _, err := s.GetByID(ctx, workspaceID); err != nil {
		return nil, err
	}

	var a models.WorkspaceAnalytics
	err := s.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE due_date < NOW() AND status <> 'DONE'),
		       COUNT(*) FILTER (WHERE status = 'DONE')
		FROM tasks WHERE workspace_id = $1
	`, workspaceID).Scan(&a.TotalTasks, &a.OverdueTasks, &a.CompletedTasks)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
