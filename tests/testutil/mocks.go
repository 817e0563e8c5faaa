package testutil

import (
	"context"
	"time"

	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) FindOrCreateFromOAuth(ctx context.Context, info *oauth.UserInfo) (*models.User, error) {
	args := m.Called(ctx, info)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uuid.UUID, name string) (*models.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockWorkspaceService mocks the WorkspaceService
type MockWorkspaceService struct {
	mock.Mock
}

func (m *MockWorkspaceService) Create(ctx context.Context, ownerID uuid.UUID, name string, description *string) (*models.Workspace, error) {
	args := m.Called(ctx, ownerID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) GetByID(ctx context.Context, workspaceID uuid.UUID) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) GetUserWorkspaces(ctx context.Context, userID uuid.UUID) ([]models.Workspace, []rbac.Role, error) {
	args := m.Called(ctx, userID)
	var workspaces []models.Workspace
	var roles []rbac.Role
	if args.Get(0) != nil {
		workspaces = args.Get(0).([]models.Workspace)
	}
	if args.Get(1) != nil {
		roles = args.Get(1).([]rbac.Role)
	}
	return workspaces, roles, args.Error(2)
}

func (m *MockWorkspaceService) Update(ctx context.Context, workspaceID uuid.UUID, name string, description *string) (*models.Workspace, error) {
	args := m.Called(ctx, workspaceID, name, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Workspace), args.Error(1)
}

func (m *MockWorkspaceService) Delete(ctx context.Context, workspaceID, requesterID uuid.UUID) (*uuid.UUID, error) {
	args := m.Called(ctx, workspaceID, requesterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*uuid.UUID), args.Error(1)
}

func (m *MockWorkspaceService) GetMembers(ctx context.Context, workspaceID uuid.UUID) ([]models.Member, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Member), args.Error(1)
}

func (m *MockWorkspaceService) Analytics(ctx context.Context, workspaceID uuid.UUID) (*models.WorkspaceAnalytics, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkspaceAnalytics), args.Error(1)
}

// MockMemberService mocks the MemberService
type MockMemberService struct {
	mock.Mock
}

func (m *MockMemberService) RoleOf(ctx context.Context, userID, workspaceID uuid.UUID) (rbac.Role, error) {
	args := m.Called(ctx, userID, workspaceID)
	return args.Get(0).(rbac.Role), args.Error(1)
}

func (m *MockMemberService) Join(ctx context.Context, inviteCode string, userID uuid.UUID) (uuid.UUID, rbac.Role, error) {
	args := m.Called(ctx, inviteCode, userID)
	return args.Get(0).(uuid.UUID), args.Get(1).(rbac.Role), args.Error(2)
}

func (m *MockMemberService) ChangeRole(ctx context.Context, workspaceID, memberUserID uuid.UUID, roleName string) (*models.Member, error) {
	args := m.Called(ctx, workspaceID, memberUserID, roleName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) Create(ctx context.Context, workspaceID, userID uuid.UUID, name string, description, emoji *string) (*models.Project, error) {
	args := m.Called(ctx, workspaceID, userID, name, description, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) List(ctx context.Context, workspaceID uuid.UUID, pageNumber, pageSize int) ([]models.Project, int64, int, error) {
	args := m.Called(ctx, workspaceID, pageNumber, pageSize)
	var projects []models.Project
	if args.Get(0) != nil {
		projects = args.Get(0).([]models.Project)
	}
	return projects, args.Get(1).(int64), args.Get(2).(int), args.Error(3)
}

func (m *MockProjectService) GetByID(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, workspaceID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, workspaceID, projectID uuid.UUID, name string, description, emoji *string) (*models.Project, error) {
	args := m.Called(ctx, workspaceID, projectID, name, description, emoji)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, workspaceID, projectID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, projectID)
	return args.Error(0)
}

func (m *MockProjectService) Analytics(ctx context.Context, workspaceID, projectID uuid.UUID) (*models.WorkspaceAnalytics, error) {
	args := m.Called(ctx, workspaceID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WorkspaceAnalytics), args.Error(1)
}

// MockTaskService mocks the TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Create(ctx context.Context, workspaceID, projectID, userID uuid.UUID, input services.TaskInput) (*models.Task, error) {
	args := m.Called(ctx, workspaceID, projectID, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, workspaceID, projectID, taskID uuid.UUID, input services.TaskInput) (*models.Task, error) {
	args := m.Called(ctx, workspaceID, projectID, taskID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) List(ctx context.Context, workspaceID uuid.UUID, filters services.TaskFilters, pageNumber, pageSize int) ([]models.Task, int64, error) {
	args := m.Called(ctx, workspaceID, filters, pageNumber, pageSize)
	var tasks []models.Task
	if args.Get(0) != nil {
		tasks = args.Get(0).([]models.Task)
	}
	return tasks, args.Get(1).(int64), args.Error(2)
}

func (m *MockTaskService) GetByID(ctx context.Context, workspaceID, projectID, taskID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, workspaceID, projectID, taskID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, workspaceID, taskID uuid.UUID) error {
	args := m.Called(ctx, workspaceID, taskID)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockEmailService mocks the EmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) IsConfigured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockEmailService) SendWelcome(to, name string) error {
	args := m.Called(to, name)
	return args.Error(0)
}
