package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/harukisan/fixed-points-backend/internal/api/middleware"
	"github.com/harukisan/fixed-points-backend/internal/service"
)

type FavoriteHandler struct {
	favoriteService *service.FavoriteService
	logger          *slog.Logger
}

func NewFavoriteHandler(favoriteService *service.FavoriteService, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favoriteService: favoriteService, logger: logger}
}

// List returns the caller's favorited fixed points, newest first.
func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.favoriteService.ListForUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("list favorites failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}
