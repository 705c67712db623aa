package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/harukisan/fixed-points-backend/internal/config"
	"github.com/harukisan/fixed-points-backend/internal/service"
)

type DiscordHandler struct {
	discordService *service.DiscordService
	cfg            *config.Config
	logger         *slog.Logger
}

func NewDiscordHandler(discordService *service.DiscordService, cfg *config.Config, logger *slog.Logger) *DiscordHandler {
	return &DiscordHandler{discordService: discordService, cfg: cfg, logger: logger}
}

type DiscordLoginResponse struct {
	AuthURL string `json:"auth_url"`
}

func (h *DiscordHandler) Login(w http.ResponseWriter, r *http.Request) {
	authURL, _, err := h.discordService.StartLogin()
	if err != nil {
		if errors.Is(err, service.ErrProviderNotConfigured) {
			http.Error(w, "Discord OAuth is not configured", http.StatusNotImplemented)
			return
		}
		h.logger.Error("discord login start failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(DiscordLoginResponse{AuthURL: authURL})
}

// Callback finishes the flow and hands both tokens to the frontend in a
// single redirect.
func (h *DiscordHandler) Callback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	result, err := h.discordService.CompleteLogin(r.Context(), code, state)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProviderNotConfigured):
			http.Error(w, "Discord OAuth is not configured", http.StatusNotImplemented)
		case errors.Is(err, service.ErrInvalidState):
			http.Error(w, "Invalid state", http.StatusBadRequest)
		case errors.Is(err, service.ErrProviderExchangeFailed),
			errors.Is(err, service.ErrProviderProfileFailed):
			// The distinct reason is logged by the service; the user gets a
			// generic failure.
			http.Error(w, "Discord login failed", http.StatusBadGateway)
		default:
			h.logger.Error("discord callback failed", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	redirectURL := fmt.Sprintf("%s/auth/callback?access_token=%s&refresh_token=%s",
		h.cfg.FrontendURL,
		url.QueryEscape(result.AccessToken),
		url.QueryEscape(result.RefreshToken),
	)
	http.Redirect(w, r, redirectURL, http.StatusFound)
}

type DiscordRevokeRequest struct {
	DiscordToken string `json:"discord_token"`
}

func (h *DiscordHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req DiscordRevokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.DiscordToken == "" {
		http.Error(w, "Discord token is required", http.StatusBadRequest)
		return
	}

	if err := h.discordService.Revoke(r.Context(), req.DiscordToken); err != nil {
		if errors.Is(err, service.ErrProviderNotConfigured) {
			http.Error(w, "Discord OAuth is not configured", http.StatusNotImplemented)
			return
		}
		http.Error(w, "Failed to revoke token", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Token revoked successfully"})
}
