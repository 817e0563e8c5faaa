package rbac

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrInvalidRole      = errors.New("invalid role")
	ErrPermissionDenied = errors.New("missing required permission")
)

// Permission is an atomic capability tag. Permissions are checked by exact
// membership, never combined or derived.
type Permission string

const (
	PermCreateWorkspace         Permission = "CREATE_WORKSPACE"
	PermDeleteWorkspace         Permission = "DELETE_WORKSPACE"
	PermEditWorkspace           Permission = "EDIT_WORKSPACE"
	PermManageWorkspaceSettings Permission = "MANAGE_WORKSPACE_SETTINGS"

	PermAddMember        Permission = "ADD_MEMBER"
	PermChangeMemberRole Permission = "CHANGE_MEMBER_ROLE"
	PermRemoveMember     Permission = "REMOVE_MEMBER"

	PermCreateProject Permission = "CREATE_PROJECT"
	PermEditProject   Permission = "EDIT_PROJECT"
	PermDeleteProject Permission = "DELETE_PROJECT"

	PermCreateTask Permission = "CREATE_TASK"
	PermEditTask   Permission = "EDIT_TASK"
	PermDeleteTask Permission = "DELETE_TASK"

	PermViewOnly Permission = "VIEW_ONLY"
)

// Role is a closed enumeration of workspace roles. Anything outside
// {OWNER, ADMIN, MEMBER} is rejected by ParseRole and by the guard.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ParseRole validates a role name supplied from outside the process
// (request bodies, database rows).
func ParseRole(name string) (Role, error) {
	switch Role(name) {
	case RoleOwner, RoleAdmin, RoleMember:
		return Role(name), nil
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidRole, name)
}

// Catalog maps each role to the permissions it grants. It is built once at
// startup and never mutated afterwards, so concurrent reads need no locking.
type Catalog map[Role][]Permission

// DefaultCatalog returns the seeded role-permission mapping.
func DefaultCatalog() Catalog {
	return Catalog{
		RoleOwner: {
			PermCreateWorkspace,
			PermDeleteWorkspace,
			PermEditWorkspace,
			PermManageWorkspaceSettings,

			PermAddMember,
			PermChangeMemberRole,
			PermRemoveMember,

			PermCreateProject,
			PermEditProject,
			PermDeleteProject,

			PermCreateTask,
			PermEditTask,
			PermDeleteTask,

			PermViewOnly,
		},
		RoleAdmin: {
			PermEditWorkspace,
			PermManageWorkspaceSettings,

			PermAddMember,
			PermChangeMemberRole,

			PermCreateProject,
			PermEditProject,

			PermCreateTask,
			PermEditTask,
			PermDeleteTask,

			PermViewOnly,
		},
		RoleMember: {
			PermViewOnly,
			PermCreateTask,
			PermEditTask,
		},
	}
}

// Permissions looks up the permission set for a role. The second return value
// is false for roles the catalog does not know, which callers must treat as
// an authorization failure.
func (c Catalog) Permissions(role Role) ([]Permission, bool) {
	perms, ok := c[role]
	return perms, ok
}

// Guard evaluates role-permission checks against an injected catalog.
type Guard struct {
	catalog Catalog
}

func NewGuard(catalog Catalog) *Guard {
	return &Guard{catalog: catalog}
}

// Check succeeds only if the role grants every required permission.
// There are no partial grants.
func (g *Guard) Check(role Role, required ...Permission) error {
	perms, ok := g.catalog.Permissions(role)
	if !ok {
		return fmt.Errorf("%w: %s", ErrInvalidRole, role)
	}

	for _, p := range required {
		if !slices.Contains(perms, p) {
			return fmt.Errorf("%w: %s", ErrPermissionDenied, p)
		}
	}

	return nil
}
