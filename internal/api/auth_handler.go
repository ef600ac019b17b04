package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/fafnerzhang/codetrekking/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler exchanges the shared service key for bearer tokens.
type AuthHandler struct {
	tokenService service.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokenService service.TokenService) *AuthHandler {
	return &AuthHandler{tokenService: tokenService}
}

// TokenRequest defines the expected JSON for requesting a token.
type TokenRequest struct {
	ServiceKey string `json:"service_key" binding:"required"`
	Subject    string `json:"subject"`
}

// TokenResponse carries the issued token.
type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IssueToken handles POST /auth/token.
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	token, expiresAt, err := h.tokenService.IssueToken(c.Request.Context(), req.ServiceKey, req.Subject)
	if err != nil {
		if errors.Is(err, service.ErrInvalidServiceKey) {
			abortWithError(c, http.StatusUnauthorized, "Invalid service key")
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	c.JSON(http.StatusOK, TokenResponse{Token: token, ExpiresAt: expiresAt})
}
