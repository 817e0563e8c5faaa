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
	"github.com/davidm/taskhive-api/internal/rbac"
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

func setupMemberTest(t *testing.T) (*testutil.MockMemberService, *MemberHandler, *services.JWTService) {
	t.Helper()
	mockMemberService := new(testutil.MockMemberService)
	handler := NewMemberHandler(mockMemberService, rbac.NewGuard(rbac.DefaultCatalog()))
	jwtSvc := services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
	return mockMemberService, handler, jwtSvc
}

func TestMemberHandler_Join_Success(t *testing.T) {
	mockMemberService, handler, jwtSvc := setupMemberTest(t)

	userID := uuid.New()
	workspaceID := uuid.New()

	mockMemberService.On("Join", mock.Anything, "ab12cd3", userID).Return(workspaceID, rbac.RoleMember, nil)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/workspaces/join/:inviteCode", handler.Join)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/workspaces/join/ab12cd3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.JoinWorkspaceResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, workspaceID, response.WorkspaceID)
	assert.Equal(t, string(rbac.RoleMember), response.Role)

	mockMemberService.AssertExpectations(t)
}

func TestMemberHandler_Join_InvalidCode(t *testing.T) {
	mockMemberService, handler, jwtSvc := setupMemberTest(t)

	userID := uuid.New()

	mockMemberService.On("Join", mock.Anything, "badcode", userID).
		Return(uuid.Nil, rbac.Role(""), services.ErrWorkspaceNotFound)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/workspaces/join/:inviteCode", handler.Join)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/workspaces/join/badcode", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	mockMemberService.AssertExpectations(t)
}

func TestMemberHandler_Join_AlreadyMember(t *testing.T) {
	mockMemberService, handler, jwtSvc := setupMemberTest(t)

	userID := uuid.New()

	mockMemberService.On("Join", mock.Anything, "ab12cd3", userID).
		Return(uuid.Nil, rbac.Role(""), services.ErrAlreadyMember)

	app := drift.New()
	app.Use(middleware.Auth(jwtSvc))
	app.Post("/workspaces/join/:inviteCode", handler.Join)

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPost, "/workspaces/join/ab12cd3", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	mockMemberService.AssertExpectations(t)
}

func TestMemberHandler_ChangeRole_Success(t *testing.T) {
	mockMemberService, handler, jwtSvc := setupMemberTest(t)

	userID := uuid.New()
	workspaceID := uuid.New()
	memberUserID := uuid.New()
	member := &models.Member{
		ID:          uuid.New(),
		UserID:      memberUserID,
		WorkspaceID: workspaceID,
		Role:        rbac.RoleAdmin,
	}

	mockMemberService.On("RoleOf", mock.Anything, userID, workspaceID).Return(rbac.RoleOwner, nil)
	mockMemberService.On("ChangeRole", mock.Anything, workspaceID, memberUserID, "ADMIN").Return(member, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/workspaces/:workspaceId/members/role", handler.ChangeRole)

	jsonBody, _ := json.Marshal(dto.ChangeMemberRoleRequest{MemberID: memberUserID, Role: "ADMIN"})

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/workspaces/"+workspaceID.String()+"/members/role", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var response dto.MemberResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, string(rbac.RoleAdmin), response.Role)
	assert.Equal(t, memberUserID, response.UserID)

	mockMemberService.AssertExpectations(t)
}

func TestMemberHandler_ChangeRole_MemberDenied(t *testing.T) {
	mockMemberService, handler, jwtSvc := setupMemberTest(t)

	userID := uuid.New()
	workspaceID := uuid.New()

	mockMemberService.On("RoleOf", mock.Anything, userID, workspaceID).Return(rbac.RoleMember, nil)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Use(middleware.Auth(jwtSvc))
	app.Patch("/workspaces/:workspaceId/members/role", handler.ChangeRole)

	jsonBody, _ := json.Marshal(dto.ChangeMemberRoleRequest{MemberID: uuid.New(), Role: "ADMIN"})

	token := generateTestToken(t, jwtSvc, userID, "test@example.com")
	req := httptest.NewRequest(http.MethodPatch, "/workspaces/"+workspaceID.String()+"/members/role", bytes.NewReader(jsonBody))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockMemberService.AssertExpectations(t)
}
