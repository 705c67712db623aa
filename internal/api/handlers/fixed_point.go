package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/harukisan/fixed-points-backend/internal/api/middleware"
	"github.com/harukisan/fixed-points-backend/internal/repository"
	"github.com/harukisan/fixed-points-backend/internal/service"
)

type FixedPointHandler struct {
	fixedPointService *service.FixedPointService
	favoriteService   *service.FavoriteService
	logger            *slog.Logger
}

func NewFixedPointHandler(fixedPointService *service.FixedPointService, favoriteService *service.FavoriteService, logger *slog.Logger) *FixedPointHandler {
	return &FixedPointHandler{
		fixedPointService: fixedPointService,
		favoriteService:   favoriteService,
		logger:            logger,
	}
}

type StepRequest struct {
	StepOrder      int      `json:"stepOrder"`
	ImageURL       *string  `json:"imageUrl"`
	Description    *string  `json:"description"`
	PositionX      *float64 `json:"positionX"`
	PositionY      *float64 `json:"positionY"`
	SkillPositionX *float64 `json:"skillPositionX"`
	SkillPositionY *float64 `json:"skillPositionY"`
}

type CreateFixedPointRequest struct {
	Title       string        `json:"title"`
	CharacterID string        `json:"characterId"`
	MapID       string        `json:"mapId"`
	Steps       []StepRequest `json:"steps"`
}

type UpdateFixedPointRequest struct {
	Title       *string `json:"title"`
	CharacterID *string `json:"characterId"`
	MapID       *string `json:"mapId"`
}

func (h *FixedPointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateFixedPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	input := service.CreateFixedPointInput{
		Title:       req.Title,
		CharacterID: req.CharacterID,
		MapID:       req.MapID,
		Steps:       make([]service.StepInput, len(req.Steps)),
	}
	for i, step := range req.Steps {
		input.Steps[i] = service.StepInput{
			StepOrder:      step.StepOrder,
			ImageURL:       step.ImageURL,
			Description:    step.Description,
			PositionX:      step.PositionX,
			PositionY:      step.PositionY,
			SkillPositionX: step.SkillPositionX,
			SkillPositionY: step.SkillPositionY,
		}
	}

	fp, err := h.fixedPointService.Create(r.Context(), middleware.GetUserID(r.Context()), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("create fixed point failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(fp)
}

func (h *FixedPointHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.FixedPointFilter{
		CharacterID: r.URL.Query().Get("character_id"),
		MapID:       r.URL.Query().Get("map_id"),
	}
	if v := r.URL.Query().Get("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			http.Error(w, "Invalid user_id", http.StatusBadRequest)
			return
		}
		filter.UserID = uint(id)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		filter.Limit = limit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		offset, err := strconv.Atoi(v)
		if err != nil || offset < 0 {
			http.Error(w, "Invalid offset", http.StatusBadRequest)
			return
		}
		filter.Offset = offset
	}

	items, err := h.fixedPointService.List(r.Context(), filter, middleware.GetUserID(r.Context()))
	if err != nil {
		h.logger.Error("list fixed points failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *FixedPointHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := fixedPointID(w, r)
	if !ok {
		return
	}

	detail, err := h.fixedPointService.Get(r.Context(), id, middleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, service.ErrFixedPointNotFound) {
			http.Error(w, "Fixed point not found", http.StatusNotFound)
			return
		}
		h.logger.Error("get fixed point failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (h *FixedPointHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := fixedPointID(w, r)
	if !ok {
		return
	}

	var req UpdateFixedPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	fp, err := h.fixedPointService.Update(r.Context(), middleware.GetUserID(r.Context()), id, service.UpdateFixedPointInput{
		Title:       req.Title,
		CharacterID: req.CharacterID,
		MapID:       req.MapID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFixedPointNotFound):
			http.Error(w, "Fixed point not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotOwner):
			http.Error(w, "Not authorized to update this fixed point", http.StatusForbidden)
		case errors.Is(err, service.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			h.logger.Error("update fixed point failed", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(fp)
}

func (h *FixedPointHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := fixedPointID(w, r)
	if !ok {
		return
	}

	if err := h.fixedPointService.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		switch {
		case errors.Is(err, service.ErrFixedPointNotFound):
			http.Error(w, "Fixed point not found", http.StatusNotFound)
		case errors.Is(err, service.ErrNotOwner):
			http.Error(w, "Not authorized to delete this fixed point", http.StatusForbidden)
		default:
			h.logger.Error("delete fixed point failed", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FixedPointHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id, ok := fixedPointID(w, r)
	if !ok {
		return
	}

	if err := h.favoriteService.Add(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		switch {
		case errors.Is(err, service.ErrFixedPointNotFound):
			http.Error(w, "Fixed point not found", http.StatusNotFound)
		case errors.Is(err, service.ErrAlreadyFavorited):
			http.Error(w, "Already favorited", http.StatusConflict)
		default:
			h.logger.Error("favorite failed", slog.String("error", err.Error()))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]bool{"favorited": true})
}

func (h *FixedPointHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	id, ok := fixedPointID(w, r)
	if !ok {
		return
	}

	if err := h.favoriteService.Remove(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		if errors.Is(err, service.ErrFavoriteNotFound) {
			http.Error(w, "Favorite not found", http.StatusNotFound)
			return
		}
		h.logger.Error("unfavorite failed", slog.String("error", err.Error()))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func fixedPointID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid fixed point ID", http.StatusBadRequest)
		return 0, false
	}
	return uint(id), true
}
