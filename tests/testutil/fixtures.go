package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:    fmt.Sprintf("user%d@example.com", f.counter),
		Name:     fmt.Sprintf("Test User %d", f.counter),
		Provider: models.ProviderEmail,
	}

	for _, opt := range opts {
		opt(user)
	}

	if user.PasswordHash == nil && user.Provider == models.ProviderEmail {
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		h := string(hash)
		user.PasswordHash = &h
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash, profile_picture, provider, provider_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, user.Email, user.Name, user.PasswordHash, user.ProfilePicture,
		user.Provider, user.ProviderID).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithName sets the user's name
func WithName(name string) UserOption {
	return func(u *models.User) {
		u.Name = name
	}
}

// WithOAuthProvider makes the user an OAuth account
func WithOAuthProvider(provider, providerID string) UserOption {
	return func(u *models.User) {
		u.Provider = provider
		u.ProviderID = &providerID
	}
}

// CreateWorkspace creates a workspace owned by the given user, along with
// the OWNER membership row the service layer would create.
func (f *Fixtures) CreateWorkspace(t *testing.T, owner *models.User, opts ...WorkspaceOption) *models.Workspace {
	t.Helper()
	f.counter++

	workspace := &models.Workspace{
		Name:       fmt.Sprintf("Test Workspace %d", f.counter),
		InviteCode: services.NewInviteCode(),
		OwnerID:    owner.ID,
	}

	for _, opt := range opts {
		opt(workspace)
	}

	ctx := context.Background()
	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO workspaces (name, description, invite_code, owner_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, workspace.Name, workspace.Description, workspace.InviteCode, workspace.OwnerID).
		Scan(&workspace.ID, &workspace.CreatedAt, &workspace.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create workspace: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO members (user_id, workspace_id, role_name)
		VALUES ($1, $2, $3)
	`, owner.ID, workspace.ID, string(rbac.RoleOwner))
	if err != nil {
		t.Fatalf("failed to create owner membership: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit workspace fixture: %v", err)
	}

	return workspace
}

// WorkspaceOption configures a test workspace
type WorkspaceOption func(*models.Workspace)

// WithWorkspaceName sets the workspace name
func WithWorkspaceName(name string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.Name = name
	}
}

// WithInviteCode sets a fixed invite code
func WithInviteCode(code string) WorkspaceOption {
	return func(w *models.Workspace) {
		w.InviteCode = code
	}
}

// AddMember adds a user to a workspace with the given role
func (f *Fixtures) AddMember(t *testing.T, workspace *models.Workspace, user *models.User, role rbac.Role) *models.Member {
	t.Helper()

	member := &models.Member{
		UserID:      user.ID,
		WorkspaceID: workspace.ID,
		Role:        role,
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO members (user_id, workspace_id, role_name)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, user.ID, workspace.ID, string(role)).Scan(&member.ID, &member.CreatedAt)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	return member
}

// SetCurrentWorkspace points a user's current workspace at the given workspace
func (f *Fixtures) SetCurrentWorkspace(t *testing.T, user *models.User, workspaceID uuid.UUID) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		UPDATE users SET current_workspace_id = $1, updated_at = NOW() WHERE id = $2
	`, workspaceID, user.ID)
	if err != nil {
		t.Fatalf("failed to set current workspace: %v", err)
	}
	user.CurrentWorkspaceID = &workspaceID
}

// CreateProject creates a project in the given workspace
func (f *Fixtures) CreateProject(t *testing.T, workspace *models.Workspace, creator *models.User, opts ...ProjectOption) *models.Project {
	t.Helper()
	f.counter++

	project := &models.Project{
		WorkspaceID: workspace.ID,
		Name:        fmt.Sprintf("Test Project %d", f.counter),
		CreatedByID: creator.ID,
	}

	for _, opt := range opts {
		opt(project)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (workspace_id, name, description, emoji, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, project.WorkspaceID, project.Name, project.Description, project.Emoji, project.CreatedByID).
		Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return project
}

// ProjectOption configures a test project
type ProjectOption func(*models.Project)

// WithProjectName sets the project name
func WithProjectName(name string) ProjectOption {
	return func(p *models.Project) {
		p.Name = name
	}
}

// CreateTask creates a task in the given project
func (f *Fixtures) CreateTask(t *testing.T, project *models.Project, creator *models.User, opts ...TaskOption) *models.Task {
	t.Helper()
	f.counter++

	task := &models.Task{
		TaskCode:     services.NewTaskCode(),
		Title:        fmt.Sprintf("Test Task %d", f.counter),
		ProjectID:    project.ID,
		WorkspaceID:  project.WorkspaceID,
		Status:       models.TaskStatusTodo,
		Priority:     models.TaskPriorityMedium,
		AssignedToID: creator.ID,
		CreatedByID:  creator.ID,
	}

	for _, opt := range opts {
		opt(task)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (task_code, title, description, project_id, workspace_id, status, priority, assigned_to, created_by, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`, task.TaskCode, task.Title, task.Description, task.ProjectID, task.WorkspaceID,
		task.Status, task.Priority, task.AssignedToID, task.CreatedByID, task.DueDate).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create task: %v", err)
	}

	return task
}

// TaskOption configures a test task
type TaskOption func(*models.Task)

// WithTaskStatus sets the task status
func WithTaskStatus(status string) TaskOption {
	return func(tk *models.Task) {
		tk.Status = status
	}
}

// WithTaskPriority sets the task priority
func WithTaskPriority(priority string) TaskOption {
	return func(tk *models.Task) {
		tk.Priority = priority
	}
}

// WithTaskDueDate sets the due date
func WithTaskDueDate(due time.Time) TaskOption {
	return func(tk *models.Task) {
		tk.DueDate = &due
	}
}

// WithAssignee sets the assigned user
func WithAssignee(userID uuid.UUID) TaskOption {
	return func(tk *models.Task) {
		tk.AssignedToID = userID
	}
}
