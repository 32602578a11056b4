package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lonepengu/backend/internal/api/middleware"
	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
	cfg         *config.Config
}

func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authService: authService, cfg: cfg}
}

type LoginRequest struct {
	Email        string  `json:"email"`
	Name         *string `json:"name"`
	AuthProvider string  `json:"auth_provider"`
	ProviderID   *string `json:"provider_id"`
	AvatarURL    *string `json:"avatar_url"`
	DeviceInfo   *string `json:"device_info"`
}

type UserPayload struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type LoginResponse struct {
	Success      bool        `json:"success"`
	UserID       string      `json:"user_id"`
	IsNewUser    bool        `json:"is_new_user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         UserPayload `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if req.Email == "" || req.AuthProvider == "" {
		writeError(w, http.StatusBadRequest, "Email and auth_provider are required", "")
		return
	}

	result, err := h.authService.Login(r.Context(), service.LoginInput{
		Email:      req.Email,
		Provider:   domain.AuthProvider(req.AuthProvider),
		ProviderID: req.ProviderID,
		Name:       req.Name,
		AvatarURL:  req.AvatarURL,
		DeviceInfo: req.DeviceInfo,
		IPAddress:  clientIP(r),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProvider) {
			writeError(w, http.StatusBadRequest, "Invalid auth provider", "")
			return
		}
		writeStorageError(w, "auth.Login", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Success:      true,
		UserID:       result.User.ID.String(),
		IsNewUser:    result.IsNewUser,
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresAt:    result.ExpiresAt,
		User: UserPayload{
			ID:    result.User.ID.String(),
			Email: result.User.Email,
			Name:  result.User.Name,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := middleware.GetAccessToken(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	// Idempotent: invalidating an already-gone session still succeeds.
	if err := h.authService.Logout(r.Context(), accessToken); err != nil {
		writeStorageError(w, "auth.Logout", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Logged out successfully",
	})
}

type ValidateResponse struct {
	Valid bool         `json:"valid"`
	User  *UserPayload `json:"user"`
}

func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	accessToken, ok := middleware.GetAccessToken(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	result, err := h.authService.Validate(r.Context(), accessToken)
	if err != nil {
		writeStorageError(w, "auth.Validate", err, h.cfg.IsDevelopment())
		return
	}

	resp := ValidateResponse{Valid: result.Valid}
	if result.Valid {
		resp.User = &UserPayload{
			ID:    result.User.ID.String(),
			Email: result.User.Email,
			Name:  result.User.Name,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type RefreshResponse struct {
	Success     bool      `json:"success"`
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if req.RefreshToken == "" {
		writeError(w, http.StatusBadRequest, "Refresh token is required", "")
		return
	}

	result, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRefreshToken):
			writeError(w, http.StatusUnauthorized, "Invalid refresh token", "")
		case errors.Is(err, domain.ErrWrongTokenPurpose):
			writeError(w, http.StatusUnauthorized, "Invalid token type", "")
		case errors.Is(err, domain.ErrSessionNotFound):
			writeError(w, http.StatusUnauthorized, "Session not found or expired", "")
		default:
			writeStorageError(w, "auth.Refresh", err, h.cfg.IsDevelopment())
		}
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{
		Success:     true,
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
	})
}
