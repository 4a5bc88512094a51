package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/services"
	"github.com/Jabramco/memebase/domain/core/entities"
	"github.com/Jabramco/memebase/domain/core/valueobjects"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
	"github.com/Jabramco/memebase/pkg/utils"
)

// InteractionHandler handles interaction tracking HTTP requests
type InteractionHandler struct {
	interactions *services.InteractionService
	logger       *zap.Logger
}

// NewInteractionHandler creates a new interaction handler
func NewInteractionHandler(interactions *services.InteractionService, logger *zap.Logger) *InteractionHandler {
	return &InteractionHandler{
		interactions: interactions,
		logger:       logger,
	}
}

// RecordInteractionRequest represents the request body for recording an interaction
type RecordInteractionRequest struct {
	Kind string `json:"kind" validate:"required"`
}

// StatsResponse is a meme's tally for one week
type StatsResponse struct {
	MemeID    string                     `json:"memeId"`
	Week      valueobjects.WeekID        `json:"week"`
	WeekLabel string                     `json:"weekLabel"`
	Stats     entities.InteractionRecord `json:"stats"`
}

// RecordInteraction handles POST /memes/{memeID}/interactions
func (h *InteractionHandler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req RecordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, appErrors.NewValidationError("invalid request body"))
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		respondError(w, r, h.logger, appErrors.NewValidationError(err.Error()))
		return
	}

	memeID := chi.URLParam(r, "memeID")
	rec, err := h.interactions.RecordInteraction(r.Context(), memeID, valueobjects.InteractionKind(req.Kind))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, h.stats(memeID, rec))
}

// GetStats handles GET /memes/{memeID}/stats
func (h *InteractionHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	memeID := chi.URLParam(r, "memeID")
	respondJSON(w, r, h.logger, http.StatusOK, h.stats(memeID, h.interactions.Stats(r.Context(), memeID)))
}

func (h *InteractionHandler) stats(memeID string, rec entities.InteractionRecord) StatsResponse {
	week := h.interactions.CurrentWeek()
	return StatsResponse{
		MemeID:    memeID,
		Week:      week,
		WeekLabel: week.Label(),
		Stats:     rec,
	}
}
