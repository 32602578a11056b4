package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"gorm.io/datatypes"

	"github.com/lonepengu/backend/internal/api/middleware"
	"github.com/lonepengu/backend/internal/config"
	"github.com/lonepengu/backend/internal/domain"
	"github.com/lonepengu/backend/internal/service"
)

type UserHandler struct {
	userService *service.UserService
	cfg         *config.Config
}

func NewUserHandler(userService *service.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{userService: userService, cfg: cfg}
}

type MeResponse struct {
	Success      bool           `json:"success"`
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Name         *string        `json:"name"`
	AvatarURL    *string        `json:"avatar_url"`
	AuthProvider string         `json:"auth_provider"`
	CreatedAt    time.Time      `json:"created_at"`
	LastLogin    time.Time      `json:"last_login"`
	Metadata     datatypes.JSON `json:"metadata"`
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeStorageError(w, "user.Me", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, MeResponse{
		Success:      true,
		ID:           user.ID.String(),
		Email:        user.Email,
		Name:         user.Name,
		AvatarURL:    user.AvatarURL,
		AuthProvider: string(user.AuthProvider),
		CreatedAt:    user.CreatedAt,
		LastLogin:    user.LastLogin,
		Metadata:     user.Metadata,
	})
}

type UpdateProfileRequest struct {
	Name      *string        `json:"name"`
	AvatarURL *string        `json:"avatar_url"`
	Metadata  datatypes.JSON `json:"metadata"`
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
		Metadata:  req.Metadata,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found", "")
			return
		}
		writeStorageError(w, "user.Update", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":         user.ID.String(),
			"email":      user.Email,
			"name":       user.Name,
			"avatar_url": user.AvatarURL,
			"metadata":   user.Metadata,
		},
	})
}

type PreferencesResponse struct {
	Success              bool    `json:"success"`
	ThemeMode            string  `json:"theme_mode"`
	NotificationsEnabled bool    `json:"notifications_enabled"`
	EmailNotifications   bool    `json:"email_notifications"`
	LastActiveRoute      *string `json:"last_active_route"`
}

func (h *UserHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	prefs, err := h.userService.GetPreferences(r.Context(), userID)
	if err != nil {
		writeStorageError(w, "user.GetPreferences", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{
		Success:              true,
		ThemeMode:            prefs.ThemeMode,
		NotificationsEnabled: prefs.NotificationsEnabled,
		EmailNotifications:   prefs.EmailNotifications,
		LastActiveRoute:      prefs.LastActiveRoute,
	})
}

type UpdatePreferencesRequest struct {
	ThemeMode            *string `json:"theme_mode"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	EmailNotifications   *bool   `json:"email_notifications"`
	LastActiveRoute      *string `json:"last_active_route"`
}

func (h *UserHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	var req UpdatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	prefs, err := h.userService.UpdatePreferences(r.Context(), userID, service.UpdatePreferencesInput{
		ThemeMode:            req.ThemeMode,
		NotificationsEnabled: req.NotificationsEnabled,
		EmailNotifications:   req.EmailNotifications,
		LastActiveRoute:      req.LastActiveRoute,
	})
	if err != nil {
		writeStorageError(w, "user.UpdatePreferences", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, PreferencesResponse{
		Success:              true,
		ThemeMode:            prefs.ThemeMode,
		NotificationsEnabled: prefs.NotificationsEnabled,
		EmailNotifications:   prefs.EmailNotifications,
		LastActiveRoute:      prefs.LastActiveRoute,
	})
}

type AppStateResponse struct {
	Success   bool           `json:"success"`
	LastRoute *string        `json:"last_route"`
	AppState  datatypes.JSON `json:"app_state"`
}

func (h *UserHandler) GetAppState(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	state, err := h.userService.GetAppState(r.Context(), userID)
	if err != nil {
		writeStorageError(w, "user.GetAppState", err, h.cfg.IsDevelopment())
		return
	}

	resp := AppStateResponse{
		Success:   true,
		LastRoute: state.LastRoute,
		AppState:  state.State,
	}
	if resp.AppState == nil {
		resp.AppState = datatypes.JSON([]byte("{}"))
	}
	writeJSON(w, http.StatusOK, resp)
}

type SaveAppStateRequest struct {
	LastRoute *string        `json:"last_route"`
	AppState  datatypes.JSON `json:"app_state"`
}

func (h *UserHandler) SaveAppState(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Access token required", middleware.CodeNoToken)
		return
	}

	var req SaveAppStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	if err := h.userService.SaveAppState(r.Context(), userID, req.LastRoute, req.AppState); err != nil {
		writeStorageError(w, "user.SaveAppState", err, h.cfg.IsDevelopment())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "App state saved",
	})
}
