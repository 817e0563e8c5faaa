package database

import (
	"context"
	"fmt"

	"github.com/davidm/taskhive-api/internal/rbac"
)

var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

	// No FK on current_workspace_id: the reference is circular and the
	// pointer is maintained by the workspace delete transaction.
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255),
		profile_picture VARCHAR(500),
		provider VARCHAR(50) NOT NULL DEFAULT 'email',
		provider_id VARCHAR(255),
		current_workspace_id UUID,
		last_login TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS roles (
		name VARCHAR(50) PRIMARY KEY,
		permissions TEXT[] NOT NULL DEFAULT '{}'
	)`,

	`CREATE TABLE IF NOT EXISTS workspaces (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		description TEXT,
		invite_code VARCHAR(20) UNIQUE NOT NULL,
		owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	// UNIQUE(workspace_id, user_id) is what actually closes the invite-join
	// double-submit race; the read-then-insert check only supplies the
	// friendly error message.
	`CREATE TABLE IF NOT EXISTS members (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		role_name VARCHAR(50) NOT NULL REFERENCES roles(name),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(workspace_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		emoji VARCHAR(20),
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		task_code VARCHAR(20) NOT NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		workspace_id UUID NOT NULL REFERENCES workspaces(id) ON DELETE CASCADE,
		status VARCHAR(20) NOT NULL DEFAULT 'TODO',
		priority VARCHAR(20) NOT NULL DEFAULT 'MEDIUM',
		assigned_to UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_by UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		due_date TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		token_hash VARCHAR(255) NOT NULL UNIQUE,
		expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	)`,

	`CREATE INDEX IF NOT EXISTS idx_members_workspace_id ON members(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_members_user_id ON members(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workspaces_owner_id ON workspaces(owner_id)`,
	`CREATE INDEX IF NOT EXISTS idx_workspaces_invite_code ON workspaces(invite_code)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_workspace_id ON projects(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_workspace_id ON tasks(workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_project_id ON tasks(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id)`,
}

func (db *DB) Migrate(ctx context.Context) error {
	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// SeedRoles upserts the role catalog into the roles table inside one
// transaction. Runs at startup after Migrate; existing rows are left alone so
// the catalog stays immutable at request time.
func (db *DB) SeedRoles(ctx context.Context, catalog rbac.Catalog) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for role, perms := range catalog {
		names := make([]string, len(perms))
		for i, p := range perms {
			names[i] = string(p)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO roles (name, permissions)
			VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING
		`, string(role), names); err != nil {
			return fmt.Errorf("failed to seed role %s: %w", role, err)
		}
	}

	return tx.Commit(ctx)
}
