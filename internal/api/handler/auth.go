package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quadroute/quadroute/internal/api/models"
	"github.com/quadroute/quadroute/internal/api/response"
	"github.com/quadroute/quadroute/internal/auth"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Token handles POST /v1/auth/token - exchange an API key for a short-lived
// access token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req models.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if errs := validateStruct(&req); errs != nil {
		response.BadRequest(w, r, "validation error", errs)
		return
	}

	token, expiresAt, err := h.authService.MintToken(req.APIKey)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) || errors.Is(err, auth.ErrMissingCredential) {
			response.Unauthorized(w, r, "invalid API key")
			return
		}
		response.InternalError(w, r, "token minting failed")
		return
	}

	response.JSON(w, r, http.StatusOK, models.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   models.Timestamp(expiresAt),
	})
}
