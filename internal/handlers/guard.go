package handlers

import (
	"context"

	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

// requirePermissions resolves the caller's role in the workspace and checks
// it against the guard. The role always comes from the membership record,
// never from the request. Writes the error response and returns false when
// the caller is not allowed through.
func requirePermissions(c *drift.Context, resolver MemberServiceInterface, guard *rbac.Guard, userID, workspaceID uuid.UUID, perms ...rbac.Permission) bool {
	role, err := resolver.RoleOf(context.Background(), userID, workspaceID)
	if err != nil {
		respondServiceError(c, err)
		return false
	}
	if err := guard.Check(role, perms...); err != nil {
		respondServiceError(c, err)
		return false
	}
	return true
}
