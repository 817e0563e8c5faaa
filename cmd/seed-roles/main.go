package main

import (
	"context"
	"fmt"
	"log"

	"github.com/davidm/taskhive-api/internal/config"
	"github.com/davidm/taskhive-api/internal/database"
	"github.com/davidm/taskhive-api/internal/rbac"
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

	for _, role := range []rbac.Role{rbac.RoleOwner, rbac.RoleAdmin, rbac.RoleMember} {
		perms, _ := catalog.Permissions(role)
		fmt.Printf("%s: %d permissions\n", role, len(perms))
	}
}
