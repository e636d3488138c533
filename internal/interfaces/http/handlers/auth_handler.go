package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"echoforge.backend/internal/domain/entities"
	domainerrors "echoforge.backend/internal/domain/errors"
	"echoforge.backend/internal/interfaces/http/middleware"
	"echoforge.backend/internal/interfaces/http/response"
	"echoforge.backend/pkg/jwt"
	"echoforge.backend/pkg/logger"
	"echoforge.backend/pkg/redis"
	"go.uber.org/zap"
)

// sessionTTL matches the refresh token lifetime so a session never
// outlives the tokens it wraps.
const sessionTTL = 24 * time.Hour

type AuthService interface {
	Register(ctx context.Context, input *entities.RegisterInput) (*entities.User, *jwt.TokenPair, error)
	Login(ctx context.Context, input *entities.LoginInput) (*entities.User, *jwt.TokenPair, error)
	Me(ctx context.Context, userID uuid.UUID) (*entities.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase AuthService
	sessions    *redis.SessionStore
}

// NewAuthHandler creates a new auth handler. sessions may be nil when no
// session encryption key is configured; token responses then carry no
// session ID and clients authenticate with the bearer token directly.
func NewAuthHandler(authUsecase AuthService, sessions *redis.SessionStore) *AuthHandler {
	return &AuthHandler{authUsecase: authUsecase, sessions: sessions}
}

// Register creates a new user account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var input entities.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, tokens, err := h.authUsecase.Register(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"user":   user,
		"tokens": tokens,
	}
	if sessionID := h.openSession(c.Request.Context(), tokens); sessionID != "" {
		payload["sessionId"] = sessionID
	}

	response.Success(c, http.StatusCreated, payload)
}

// Login authenticates a user
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var input entities.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, tokens, err := h.authUsecase.Login(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"user":   user,
		"tokens": tokens,
	}
	if sessionID := h.openSession(c.Request.Context(), tokens); sessionID != "" {
		payload["sessionId"] = sessionID
	}

	response.Success(c, http.StatusOK, payload)
}

// Logout invalidates the caller's server-side session, if any. Bearer
// tokens remain valid until expiry.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.sessions != nil {
		if sessionID := c.GetHeader("x-session-id"); sessionID != "" {
			if err := h.sessions.DeleteSession(c.Request.Context(), sessionID); err != nil {
				logger.Warn(c.Request.Context(), "Failed to delete session", zap.Error(err))
			}
		}
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Logged out"})
}

// GetMe returns the current user's profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	user, err := h.authUsecase.Me(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// openSession stores the token pair behind an opaque session ID.
// Session creation is best effort; a Redis outage never blocks login.
func (h *AuthHandler) openSession(ctx context.Context, tokens *jwt.TokenPair) string {
	if h.sessions == nil || tokens == nil {
		return ""
	}

	sessionID := uuid.NewString()
	data := &redis.SessionData{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
	if err := h.sessions.CreateSession(ctx, sessionID, data, sessionTTL); err != nil {
		logger.Warn(ctx, "Failed to create session", zap.Error(err))
		return ""
	}
	return sessionID
}
