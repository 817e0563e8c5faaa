package integration

import (
	"net/http"
	"testing"

	"github.com/davidm/taskhive-api/internal/config"
	"github.com/davidm/taskhive-api/internal/handlers"
	authmw "github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/davidm/taskhive-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTestApp wires the full router against a real database, matching the
// route table in cmd/taskhive-api.
func buildTestApp(tdb *testutil.TestDB) http.Handler {
	catalog := rbac.DefaultCatalog()
	guard := rbac.NewGuard(catalog)

	jwtService := testutil.TestJWTService()
	userService := services.NewUserService(tdb.DB, catalog)
	tokenService := services.NewTokenService(tdb.DB)
	memberService := services.NewMemberService(tdb.DB, catalog)
	workspaceService := services.NewWorkspaceService(tdb.DB, catalog)
	projectService := services.NewProjectService(tdb.DB)
	taskService := services.NewTaskService(tdb.DB)
	emailService := services.NewEmailService(config.SMTPConfig{})

	authHandler := handlers.NewAuthHandler(userService, jwtService, tokenService, emailService, map[string]oauth.Provider{})
	userHandler := handlers.NewUserHandler(userService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, memberService, guard)
	memberHandler := handlers.NewMemberHandler(memberService, guard)
	projectHandler := handlers.NewProjectHandler(projectService, memberService, guard)
	taskHandler := handlers.NewTaskHandler(taskService, memberService, guard)

	app := drift.New()
	app.Use(middleware.Recovery())
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)
	protected.Get("/workspaces/:workspaceId", workspaceHandler.Get)
	protected.Delete("/workspaces/:workspaceId", workspaceHandler.Delete)
	protected.Get("/workspaces/:workspaceId/analytics", workspaceHandler.Analytics)

	protected.Post("/workspaces/join/:inviteCode", memberHandler.Join)
	protected.Patch("/workspaces/:workspaceId/members/role", memberHandler.ChangeRole)

	protected.Post("/workspaces/:workspaceId/projects", projectHandler.Create)
	protected.Get("/workspaces/:workspaceId/projects", projectHandler.List)

	protected.Get("/workspaces/:workspaceId/tasks", taskHandler.List)
	protected.Post("/workspaces/:workspaceId/projects/:projectId/tasks", taskHandler.Create)

	return app
}

func TestAPI_Integration_FullFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	app := buildTestApp(tdb)
	client := testutil.NewHTTPTestClient(t, app)

	// Register a user; this bootstraps a default workspace.
	rec := client.POST("/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "hunter2hunter2",
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var registered dto.AuthResponse
	testutil.ParseJSON(t, rec, &registered)
	require.NotNil(t, registered.User.CurrentWorkspaceID)
	require.NotEmpty(t, registered.Tokens.AccessToken)

	ownerHeaders := map[string]string{"Authorization": testutil.AuthHeader(registered.Tokens.AccessToken)}

	// Create a second workspace.
	rec = client.POST("/api/v1/workspaces", dto.CreateWorkspaceRequest{Name: "Platform Team"}, ownerHeaders)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var workspace dto.WorkspaceResponse
	testutil.ParseJSON(t, rec, &workspace)
	assert.Equal(t, string(rbac.RoleOwner), workspace.Role)
	require.NotEmpty(t, workspace.InviteCode)

	// A second user joins it by invite code.
	rec = client.POST("/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Milo",
		Email:    "milo@example.com",
		Password: "hunter2hunter2",
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var joined dto.AuthResponse
	testutil.ParseJSON(t, rec, &joined)
	memberHeaders := map[string]string{"Authorization": testutil.AuthHeader(joined.Tokens.AccessToken)}

	rec = client.POST("/api/v1/workspaces/join/"+workspace.InviteCode, nil, memberHeaders)
	testutil.AssertStatus(t, rec, http.StatusOK)

	// The owner creates a project; the member is not allowed to.
	rec = client.POST("/api/v1/workspaces/"+workspace.ID.String()+"/projects",
		dto.CreateProjectRequest{Name: "Backend"}, ownerHeaders)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var project dto.ProjectResponse
	testutil.ParseJSON(t, rec, &project)

	rec = client.POST("/api/v1/workspaces/"+workspace.ID.String()+"/projects",
		dto.CreateProjectRequest{Name: "Skunkworks"}, memberHeaders)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	// The member can create tasks.
	rec = client.POST("/api/v1/workspaces/"+workspace.ID.String()+"/projects/"+project.ID.String()+"/tasks",
		dto.CreateTaskRequest{Title: "Fix login redirect"}, memberHeaders)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var task dto.TaskResponse
	testutil.ParseJSON(t, rec, &task)
	assert.Equal(t, joined.User.ID, task.AssignedTo)

	// Analytics reflect the new task.
	rec = client.GET("/api/v1/workspaces/"+workspace.ID.String()+"/analytics", ownerHeaders)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var analytics dto.WorkspaceAnalyticsResponse
	testutil.ParseJSON(t, rec, &analytics)
	assert.Equal(t, int64(1), analytics.TotalTasks)

	// Only the owning user can delete the workspace.
	rec = client.DELETE("/api/v1/workspaces/"+workspace.ID.String(), memberHeaders)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = client.DELETE("/api/v1/workspaces/"+workspace.ID.String(), ownerHeaders)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var deleted dto.DeleteWorkspaceResponse
	testutil.ParseJSON(t, rec, &deleted)
	require.NotNil(t, deleted.CurrentWorkspaceID)
	assert.Equal(t, *registered.User.CurrentWorkspaceID, *deleted.CurrentWorkspaceID)
}

func TestAPI_Integration_RefreshRotation(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	app := buildTestApp(tdb)
	client := testutil.NewHTTPTestClient(t, app)

	rec := client.POST("/api/v1/auth/register", dto.RegisterRequest{
		Name:     "Dana",
		Email:    "dana@example.com",
		Password: "hunter2hunter2",
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusCreated)

	var registered dto.AuthResponse
	testutil.ParseJSON(t, rec, &registered)

	// Refresh hands out a new pair.
	rec = client.POST("/api/v1/auth/refresh", dto.RefreshTokenRequest{
		RefreshToken: registered.Tokens.RefreshToken,
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusOK)

	var rotated dto.TokenResponse
	testutil.ParseJSON(t, rec, &rotated)
	assert.NotEmpty(t, rotated.RefreshToken)

	// The presented token is burned.
	rec = client.POST("/api/v1/auth/refresh", dto.RefreshTokenRequest{
		RefreshToken: registered.Tokens.RefreshToken,
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusUnauthorized)

	// The rotated one works.
	rec = client.POST("/api/v1/auth/refresh", dto.RefreshTokenRequest{
		RefreshToken: rotated.RefreshToken,
	}, nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
}
