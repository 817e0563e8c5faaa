package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/davidm/taskhive-api/internal/config"
	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/handlers"
	authmw "github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	catalog := rbac.DefaultCatalog()
	if err := db.SeedRoles(ctx, catalog); err != nil {
		log.Fatalf("Failed to seed roles: %v", err)
	}
	guard := rbac.NewGuard(catalog)

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db, catalog)
	tokenService := services.NewTokenService(db)
	memberService := services.NewMemberService(db, catalog)
	workspaceService := services.NewWorkspaceService(db, catalog)
	projectService := services.NewProjectService(db)
	taskService := services.NewTaskService(db)
	emailService := services.NewEmailService(cfg.SMTP)

	providers := map[string]oauth.Provider{
		"google": oauth.NewGoogleProvider(cfg.Google),
	}

	authHandler := handlers.NewAuthHandler(userService, jwtService, tokenService, emailService, providers)
	userHandler := handlers.NewUserHandler(userService)
	workspaceHandler := handlers.NewWorkspaceHandler(workspaceService, memberService, guard)
	memberHandler := handlers.NewMemberHandler(memberService, guard)
	projectHandler := handlers.NewProjectHandler(projectService, memberService, guard)
	taskHandler := handlers.NewTaskHandler(taskService, memberService, guard)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)
	auth.Post("/logout", authHandler.Logout)
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)

	protected := api.Group("")
	protected.Use(authmw.Auth(jwtService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.GetMe)
	protected.Patch("/users/me", userHandler.UpdateMe)

	protected.Get("/workspaces", workspaceHandler.List)
	protected.Post("/workspaces", workspaceHandler.Create)
	protected.Get("/workspaces/:workspaceId", workspaceHandler.Get)
	protected.Patch("/workspaces/:workspaceId", workspaceHandler.Update)
	protected.Delete("/workspaces/:workspaceId", workspaceHandler.Delete)
	protected.Get("/workspaces/:workspaceId/members", workspaceHandler.GetMembers)
	protected.Get("/workspaces/:workspaceId/analytics", workspaceHandler.Analytics)

	protected.Post("/workspaces/join/:inviteCode", memberHandler.Join)
	protected.Patch("/workspaces/:workspaceId/members/role", memberHandler.ChangeRole)

	protected.Get("/workspaces/:workspaceId/projects", projectHandler.List)
	protected.Post("/workspaces/:workspaceId/projects", projectHandler.Create)
	protected.Get("/workspaces/:workspaceId/projects/:projectId", projectHandler.Get)
	protected.Patch("/workspaces/:workspaceId/projects/:projectId", projectHandler.Update)
	protected.Delete("/workspaces/:workspaceId/projects/:projectId", projectHandler.Delete)
	protected.Get("/workspaces/:workspaceId/projects/:projectId/analytics", projectHandler.Analytics)

	protected.Get("/workspaces/:workspaceId/tasks", taskHandler.List)
	protected.Post("/workspaces/:workspaceId/projects/:projectId/tasks", taskHandler.Create)
	protected.Get("/workspaces/:workspaceId/projects/:projectId/tasks/:taskId", taskHandler.Get)
	protected.Patch("/workspaces/:workspaceId/projects/:projectId/tasks/:taskId", taskHandler.Update)
	protected.Delete("/workspaces/:workspaceId/tasks/:taskId", taskHandler.Delete)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			_ = tokenService.CleanupExpired(context.Background())
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		log.Printf("Server starting on %s", addr)
		if err := app.Run(addr); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}
