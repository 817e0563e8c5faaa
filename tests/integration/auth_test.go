package integration

import (
	"context"
	"testing"
	"time"

	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/rbac"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/davidm/taskhive-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Integration_RegisterAndAuthenticate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB, rbac.DefaultCatalog())
	ctx := context.Background()

	user, err := svc.Register(ctx, "Dana", "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "dana@example.com", user.Email)

	// Registration bootstraps a default workspace and points the user at it.
	require.NotNil(t, user.CurrentWorkspaceID)

	memberSvc := services.NewMemberService(tdb.DB, rbac.DefaultCatalog())
	role, err := memberSvc.RoleOf(ctx, user.ID, *user.CurrentWorkspaceID)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleOwner, role)

	authenticated, err := svc.Authenticate(ctx, "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = svc.Authenticate(ctx, "dana@example.com", "wrong-password")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUserService_Integration_RegisterDuplicateEmail(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB, rbac.DefaultCatalog())
	ctx := context.Background()

	_, err := svc.Register(ctx, "Dana", "dana@example.com", "hunter2hunter2")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Other Dana", "dana@example.com", "hunter2hunter2")
	assert.ErrorIs(t, err, services.ErrEmailTaken)
}

func TestUserService_Integration_OAuthFirstLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	svc := services.NewUserService(tdb.DB, rbac.DefaultCatalog())
	ctx := context.Background()

	info := &oauth.UserInfo{
		Provider: "google",
		ID:       "google-sub-123",
		Email:    "dana@example.com",
		Name:     "Dana",
	}

	created, err := svc.FindOrCreateFromOAuth(ctx, info)
	require.NoError(t, err)
	require.NotNil(t, created.CurrentWorkspaceID)

	// Same identity on the next login resolves to the same account.
	again, err := svc.FindOrCreateFromOAuth(ctx, info)
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	// Password login is rejected for OAuth accounts.
	_, err = svc.Authenticate(ctx, "dana@example.com", "whatever-password")
	assert.ErrorIs(t, err, services.ErrWrongProvider)
}

func TestTokenService_Integration_RefreshTokenLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	hash := services.HashToken("some-refresh-token")

	err := svc.StoreRefreshToken(ctx, user.ID, hash, time.Now().Add(24*time.Hour))
	require.NoError(t, err)

	userID, err := svc.ValidateRefreshToken(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	err = svc.RevokeRefreshToken(ctx, hash)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(ctx, hash)
	assert.Error(t, err)
}

func TestTokenService_Integration_RevokeAllUserTokens(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	fixtures := testutil.NewFixtures(tdb.DB)
	svc := services.NewTokenService(tdb.DB)
	ctx := context.Background()

	user := fixtures.CreateUser(t)
	other := fixtures.CreateUser(t)

	hashA := services.HashToken("token-a")
	hashB := services.HashToken("token-b")
	hashOther := services.HashToken("token-other")

	require.NoError(t, svc.StoreRefreshToken(ctx, user.ID, hashA, time.Now().Add(24*time.Hour)))
	require.NoError(t, svc.StoreRefreshToken(ctx, user.ID, hashB, time.Now().Add(24*time.Hour)))
	require.NoError(t, svc.StoreRefreshToken(ctx, other.ID, hashOther, time.Now().Add(24*time.Hour)))

	require.NoError(t, svc.RevokeAllUserTokens(ctx, user.ID))

	_, err := svc.ValidateRefreshToken(ctx, hashA)
	assert.Error(t, err)
	_, err = svc.ValidateRefreshToken(ctx, hashB)
	assert.Error(t, err)

	// The other user's session survives.
	otherID, err := svc.ValidateRefreshToken(ctx, hashOther)
	require.NoError(t, err)
	assert.Equal(t, other.ID, otherID)
}
