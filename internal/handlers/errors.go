package handlers

import (
	"errors"

	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/m1z23r/drift/pkg/drift"
)

// respondServiceError maps service-layer sentinel errors onto HTTP responses.
// Anything unrecognized is treated as a store failure.
func respondServiceError(c *drift.Context, err error) {
	switch {
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRoleNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		c.NotFound(err.Error())

	case errors.Is(err, services.ErrNotMember),
		errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())

	case errors.Is(err, rbac.ErrPermissionDenied),
		errors.Is(err, rbac.ErrInvalidRole):
		c.Forbidden("you do not have the necessary permissions to perform this action")

	case errors.Is(err, services.ErrNotOwner):
		c.Forbidden(err.Error())

	case errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrWrongProvider),
		errors.Is(err, services.ErrDuplicateProjectName),
		errors.Is(err, services.ErrDuplicateTaskTitle),
		errors.Is(err, services.ErrAssigneeNotMember):
		c.BadRequest(err.Error())

	default:
		c.InternalServerError("internal server error")
	}
}
