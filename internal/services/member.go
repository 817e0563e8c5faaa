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
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotMember      = errors.New("user is not a member of this workspace")
	ErrAlreadyMember  = errors.New("user is already a member of this workspace")
	ErrMemberNotFound = errors.New("member not found")
)

const pgUniqueViolation = "23505"

type MemberService struct {
	db      *database.DB
	catalog rbac.Catalog
}

func NewMemberService(db *database.DB, catalog rbac.Catalog) *MemberService {
	return &MemberService{db: db, catalog: catalog}
}

// RoleOf resolves the role a user holds in a workspace. It is the single
// source of truth feeding the rbac guard; handlers never accept a role from
// the client.
func (s *MemberService) RoleOf(ctx context.Context, userID, workspaceID uuid.UUID) (rbac.Role, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM workspaces WHERE id = $1)
	`, workspaceID).Scan(&exists)
	if err != nil {
		return "", fmt.Errorf("failed to look up workspace: %w", err)
	}
	if !exists {
		return "", ErrWorkspaceNotFound
	}

	var roleName string
	err = s.db.Pool.QueryRow(ctx, `
		SELECT role_name FROM members WHERE user_id = $1 AND workspace_id = $2
	`, userID, workspaceID).Scan(&roleName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotMember
		}
		return "", err
	}

	return rbac.ParseRole(roleName)
}

// Join adds the user to the workspace matching the invite code, with role
// MEMBER. A unique constraint on (workspace_id, user_id) backs the duplicate
// check, so a racing double-submit still comes back as ErrAlreadyMember.
func (s *MemberService) Join(ctx context.Context, inviteCode string, userID uuid.UUID) (uuid.UUID, rbac.Role, error) {
	var workspaceID uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id FROM workspaces WHERE invite_code = $1
	`, inviteCode).Scan(&workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, "", ErrWorkspaceNotFound
		}
		return uuid.Nil, "", err
	}

	var exists bool
	err = s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM members WHERE user_id = $1 AND workspace_id = $2)
	`, userID, workspaceID).Scan(&exists)
	if err != nil {
		return uuid.Nil, "", err
	}
	if exists {
		return uuid.Nil, "", ErrAlreadyMember
	}

	if _, ok := s.catalog.Permissions(rbac.RoleMember); !ok {
		return uuid.Nil, "", ErrRoleNotFound
	}

	_, err = s.db.Pool.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role_name)
		VALUES ($1, $2, $3)
	`, userID, workspaceID, string(rbac.RoleMember))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return uuid.Nil, "", ErrAlreadyMember
		}
		return uuid.Nil, "", fmt.Errorf("failed to add member: %w", err)
	}

	return workspaceID, rbac.RoleMember, nil
}

// ChangeRole updates a member's role and nothing else. It can move the owning
// member off OWNER; workspace deletion keeps trusting owner_id regardless.
func (s *MemberService) ChangeRole(ctx context.Context, workspaceID, memberUserID uuid.UUID, roleName string) (*models.Member, error) {
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

	role, err := rbac.ParseRole(roleName)
	if err != nil {
		return nil, ErrRoleNotFound
	}
	if _, ok := s.catalog.Permissions(role); !ok {
		return nil, ErrRoleNotFound
	}

	var member models.Member
	var stored string
	err = s.db.Pool.QueryRow(ctx, `
		UPDATE members SET role_name = $1
		WHERE user_id = $2 AND workspace_id = $3
		RETURNING id, user_id, workspace_id, role_name, created_at
	`, string(role), memberUserID, workspaceID).Scan(
		&member.ID, &member.UserID, &member.WorkspaceID, &stored, &member.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	member.Role = rbac.Role(stored)
	return &member, nil
}
