package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"botgate/internal/auth"
	"botgate/internal/config"
)

// AuthHandler issues the JWTs consumed by the authenticated-write tier.
// The gateway provisions a single operator account from configuration; it
// keeps no user store of its own.
type AuthHandler struct {
	jwtManager *auth.JWTManager
	creds      config.AuthConfig
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(jwtManager *auth.JWTManager, creds config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		jwtManager: jwtManager,
		creds:      creds,
	}
}

// Login authenticates the dashboard operator and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	if req.Username != h.creds.Username {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	if err := auth.ValidatePassword(req.Password, h.creds.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "Invalid credentials",
		})
		return
	}

	userID := uuid.New().String()
	token, err := h.jwtManager.GenerateToken(userID, req.Username, "operator")
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{
			Success: false,
			Error:   "Failed to generate access token",
		})
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: AuthResponse{
			AccessToken: token,
			ExpiresAt:   time.Now().Add(h.jwtManager.TokenTTL()),
			Username:    req.Username,
			Role:        "operator",
		},
	})
}
