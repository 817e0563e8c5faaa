package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWrongProvider      = errors.New("email is registered with another provider")
)

type UserService struct {
	db      *database.DB
	catalog rbac.Catalog
}

func NewUserService(db *database.DB, catalog rbac.Catalog) *UserService {
	return &UserService{db: db, catalog: catalog}
}

// Register creates a local-credentials user. The user row, their default
// workspace, the OWNER membership and the current-workspace pointer are all
// written in one transaction, so a half-registered account is never visible.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)
	`, email).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	return s.createWithDefaultWorkspace(ctx, userSeed{
		name:         name,
		email:        email,
		passwordHash: &hashStr,
		provider:     models.ProviderEmail,
	})
}

// Authenticate verifies local credentials and records the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsLocal() || user.PasswordHash == nil {
		return nil, ErrWrongProvider
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	_, _ = s.db.Pool.Exec(ctx, `
		UPDATE users SET last_login = NOW(), updated_at = NOW() WHERE id = $1
	`, user.ID)

	return user, nil
}

// FindOrCreateFromOAuth logs in an OAuth user, bootstrapping the account and
// its default workspace on first login.
func (s *UserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, profile_picture, provider, provider_id,
		       current_workspace_id, last_login, created_at, updated_at
		FROM users
		WHERE provider = $1 AND provider_id = $2
	`, info.Provider, info.ID).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ProfilePicture,
		&user.Provider, &user.ProviderID, &user.CurrentWorkspaceID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err == nil {
		_, _ = s.db.Pool.Exec(ctx, `
			UPDATE users SET last_login = NOW(), updated_at = NOW() WHERE id = $1
		`, user.ID)
		return &user, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	return s.createWithDefaultWorkspace(ctx, userSeed{
		name:           info.Name,
		email:          info.Email,
		profilePicture: nullableString(info.ProfilePicture),
		provider:       info.Provider,
		providerID:     &info.ID,
	})
}

type userSeed struct {
	name           string
	email          string
	passwordHash   *string
	profilePicture *string
	provider       string
	providerID     *string
}

func (s *UserService) createWithDefaultWorkspace(ctx context.Context, seed userSeed) (*models.User, error) {
	if _, ok := s.catalog.Permissions(rbac.RoleOwner); !ok {
		return nil, ErrRoleNotFound
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var user models.User
	err = tx.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, profile_picture, provider, provider_id, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, email, name, password_hash, profile_picture, provider, provider_id,
		          current_workspace_id, last_login, created_at, updated_at
	`, seed.name, seed.email, seed.passwordHash, seed.profilePicture, seed.provider, seed.providerID).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ProfilePicture,
		&user.Provider, &user.ProviderID, &user.CurrentWorkspaceID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	var workspaceID uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, description, invite_code, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, "My Workspace", "Default Workspace", NewInviteCode(), user.ID).Scan(&workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to create default workspace: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role_name)
		VALUES ($1, $2, $3)
	`, user.ID, workspaceID, string(rbac.RoleOwner))
	if err != nil {
		return nil, fmt.Errorf("failed to add owner as member: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET current_workspace_id = $1, updated_at = NOW() WHERE id = $2
	`, workspaceID, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update current workspace: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	user.CurrentWorkspaceID = &workspaceID
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, profile_picture, provider, provider_id,
		       current_workspace_id, last_login, created_at, updated_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ProfilePicture,
		&user.Provider, &user.ProviderID, &user.CurrentWorkspaceID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, profile_picture, provider, provider_id,
		       current_workspace_id, last_login, created_at, updated_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ProfilePicture,
		&user.Provider, &user.ProviderID, &user.CurrentWorkspaceID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	var user models.User
	err := s.db.Pool.QueryRow(ctx, `
		UPDATE users SET name = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING id, email, name, password_hash, profile_picture, provider, provider_id,
		          current_workspace_id, last_login, created_at, updated_at
	`, name, id).Scan(
		&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.ProfilePicture,
		&user.Provider, &user.ProviderID, &user.CurrentWorkspaceID,
		&user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
