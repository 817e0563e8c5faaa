package handlers

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/davidm/taskhive-api/internal/middleware"
	"github.com/davidm/taskhive-api/internal/models"
	"github.com/davidm/taskhive-api/internal/oauth"
	"github.com/davidm/taskhive-api/internal/services"
	"github.com/davidm/taskhive-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	userService  UserServiceInterface
	jwtService   JWTServiceInterface
	tokenService TokenServiceInterface
	emailService EmailServiceInterface
	providers    map[string]oauth.Provider
}

func NewAuthHandler(userService UserServiceInterface, jwtService JWTServiceInterface, tokenService TokenServiceInterface, emailService EmailServiceInterface, providers map[string]oauth.Provider) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		jwtService:   jwtService,
		tokenService: tokenService,
		emailService: emailService,
		providers:    providers,
	}
}

func userResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Name:               u.Name,
		ProfilePicture:     u.ProfilePicture,
		Provider:           u.Provider,
		CurrentWorkspaceID: u.CurrentWorkspaceID,
	}
}

func (h *AuthHandler) issueTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	pair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	hash := services.HashToken(pair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(ctx, user.ID, hash, expiresAt); err != nil {
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    pair.ExpiresIn,
	}, nil
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.BadRequest("name, email and password are required")
		return
	}
	if len(req.Password) < 8 {
		c.BadRequest("password must be at least 8 characters")
		return
	}

	ctx := context.Background()

	user, err := h.userService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	response := dto.AuthResponse{
		User:   userResponse(user),
		Tokens: *tokens,
	}

	// A broken mail setup must not fail registration.
	if h.emailService.IsConfigured() {
		if err := h.emailService.SendWelcome(user.Email, user.Name); err != nil {
			log.Printf("failed to send welcome email to %s: %v", user.Email, err)
			response.Warning = "account created but welcome email could not be sent"
		}
	}

	_ = c.JSON(201, response)
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	ctx := context.Background()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	_ = c.JSON(200, dto.AuthResponse{
		User:   userResponse(user),
		Tokens: *tokens,
	})
}

func (h *AuthHandler) Refresh(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	ctx := context.Background()
	hash := services.HashToken(req.RefreshToken)

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, hash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token revoked or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Rotate: the presented token is single use.
	if err := h.tokenService.RevokeRefreshToken(ctx, hash); err != nil {
		c.InternalServerError("failed to rotate refresh token")
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	_ = c.JSON(200, *tokens)
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}
	if req.RefreshToken == "" {
		c.BadRequest("refresh_token is required")
		return
	}

	if err := h.tokenService.RevokeRefreshToken(context.Background(), services.HashToken(req.RefreshToken)); err != nil {
		c.InternalServerError("failed to revoke token")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(context.Background(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "logged out everywhere"})
}

func (h *AuthHandler) GetConsentURL(c *drift.Context) {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		c.NotFound("unknown provider")
		return
	}

	state, err := oauth.GenerateState()
	if err != nil {
		c.InternalServerError("failed to generate state")
		return
	}

	_ = c.JSON(200, dto.ConsentURLResponse{URL: provider.GetConsentURL(state)})
}

func (h *AuthHandler) Callback(c *drift.Context) {
	provider, ok := h.providers[c.Param("provider")]
	if !ok {
		c.NotFound("unknown provider")
		return
	}

	code := c.QueryParam("code")
	if code == "" {
		c.BadRequest("code is required")
		return
	}

	ctx := context.Background()

	info, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		c.Unauthorized("code exchange failed")
		return
	}

	user, err := h.userService.FindOrCreateFromOAuth(ctx, info)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tokens, err := h.issueTokens(ctx, user)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	_ = c.JSON(200, dto.AuthResponse{
		User:   userResponse(user),
		Tokens: *tokens,
	})
}
