package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/harukisan/fixed-points-backend/internal/service"
)

type ValorantHandler struct {
	valorantService *service.ValorantService
	logger          *slog.Logger
}

func NewValorantHandler(valorantService *service.ValorantService, logger *slog.Logger) *ValorantHandler {
	return &ValorantHandler{valorantService: valorantService, logger: logger}
}

func (h *ValorantHandler) Agents(w http.ResponseWriter, r *http.Request) {
	agents, err := h.valorantService.GetAgents(r.Context())
	if err != nil {
		h.logger.Error("get agents failed", slog.String("error", err.Error()))
		http.Error(w, "Failed to load agents", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(agents)
}

func (h *ValorantHandler) Maps(w http.ResponseWriter, r *http.Request) {
	maps, err := h.valorantService.GetMaps(r.Context())
	if err != nil {
		h.logger.Error("get maps failed", slog.String("error", err.Error()))
		http.Error(w, "Failed to load maps", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(maps)
}

// Sync forces a refresh of the agent and map catalog.
func (h *ValorantHandler) Sync(w http.ResponseWriter, r *http.Request) {
	count, err := h.valorantService.Sync(r.Context())
	if err != nil {
		h.logger.Error("catalog sync failed", slog.String("error", err.Error()))
		http.Error(w, "Catalog sync failed", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"synced": count})
}
