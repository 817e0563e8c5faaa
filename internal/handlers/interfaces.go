package handlers

import (
	"context"
	"time"

	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error)
}

// WorkspaceServiceInterface defines the methods used by handlers from WorkspaceService
type WorkspaceServiceInterface interface {
	Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Workspace, error)
	GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error)
	GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []rbac.Role, error)
	Update(ctx context.Context, workspaceID uuid.UUID, name string, description *string) (*models.Workspace, error)
	Delete(ctx context.Context, workspaceID, requesterID uuid.UUID) (*uuid.UUID, error)
	GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error)
	Analytics(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceAnalytics, error)
}

// MemberServiceInterface defines the methods used by handlers from MemberService
type MemberServiceInterface interface {
	RoleOf(ctx context.Context, userID, workspaceID uuid.UUID) (rbac.Role, error)
	Join(ctx context.Context, inviteCode string, userID uuid.UUID) (uuid.UUID, rbac.Role, error)
	ChangeRole(ctx context.Context, workspaceID, memberUserID uuid.UUID, roleName string) (*models.Member, error)
}

// ProjectServiceInterface defines the methods used by handlers from ProjectService
type ProjectServiceInterface interface {
	Create(ctx context.Context, workspaceID, userID uuid.UUID, name string, description, emoji *string) (*models.Project, error)
	List(ctx context.Context, workspaceID uuid.UUID, pageNumber, pageSize int) ([]models.Project, int64, int, error)
	GetByID(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.Project, error)
	Update(ctx context.Context, workspaceID, projectID uuid.UUID, name string, description, emoji *string) (*models.Project, error)
	Delete(ctx context.Context, workspaceID, projectID uuid.UUID) error
	Analytics(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.WorkspaceAnalytics, error)
}

// TaskServiceInterface defines the methods used by handlers from TaskService
type TaskServiceInterface interface {
	Create(ctx context.Context, workspaceID, projectID, userID uuid.UUID, input services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, workspaceID, projectID, taskID uuid.UUID, input services.TaskInput) (*models.Task, error)
	List(ctx context.Context, workspaceID uuid.UUID, filters services.TaskFilters, pageNumber, pageSize int) ([]models.Task, int64, error)
	GetByID(ctx context.Context, workspaceID, projectID, taskID uuid.UUID) (*models.Task, error)
	Delete(ctx context.Context, workspaceID, taskID uuid.UUID) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// EmailServiceInterface defines the methods used by handlers from EmailService
type EmailServiceInterface interface {
	IsConfigured() bool
	SendWelcome(to, name string) error
}
