package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/davidm/taskhive-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserTest(t *testing.T) (*testutil.MockUserService, *UserHandler, *services.JWTService) {
	t.Helper()
	users := new(testutil.MockUserService)
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
	return users, NewUserHandler(users), jwtSvc
}

func TestUserHandler_GetMe(t *testing.T) {
	users, handler, jwtSvc := setupUserTest(t)

	workspaceID := uuid.New()
	user := &models.User{
		ID:                 uuid.New(),
		Email:              "dana@example.com",
		Name:               "Dana",
		Provider:           models.ProviderEmail,
		CurrentWorkspaceID: &workspaceID,
	}

	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/users/me", handler.GetMe)

	token := generateTestToken(t, jwtSvc, user.ID, user.Email)
	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.UserResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, user.ID, response.ID)
	assert.Equal(t, "dana@example.com", response.Email)
	require.NotNil(t, response.CurrentWorkspaceID)
	assert.Equal(t, workspaceID, *response.CurrentWorkspaceID)

	users.AssertExpectations(t)
}

func TestUserHandler_GetMe_NoToken(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Get("/users/me", handler.GetMe)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_UpdateMe(t *testing.T) {
	users, handler, jwtSvc := setupUserTest(t)

	userID := uuid.New()
	updated := &models.User{
		ID:       userID,
		Email:    "dana@example.com",
		Name:     "Dana Updated",
		Provider: models.ProviderEmail,
	}

	users.On("Update", mock.Anything, userID, "Dana Updated").Return(updated, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/users/me", handler.UpdateMe)

	jsonBody, _ := json.Marshal(dto.UpdateUserRequest{Name: "Dana Updated"})

	token := generateTestToken(t, jwtSvc, userID, "dana@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.UserResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, "Dana Updated", response.Name)

	users.AssertExpectations(t)
}

func TestUserHandler_UpdateMe_EmptyName(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/users/me", handler.UpdateMe)

	jsonBody, _ := json.Marshal(dto.UpdateUserRequest{Name: ""})

	token := generateTestToken(t, jwtSvc, uuid.New(), "dana@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/users/me", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
