package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/services"
)

// ChampionHandler serves the meme of the week
type ChampionHandler struct {
	champion *services.ChampionService
	logger   *zap.Logger
}

// NewChampionHandler creates a new champion handler
func NewChampionHandler(champion *services.ChampionService, logger *zap.Logger) *ChampionHandler {
	return &ChampionHandler{
		champion: champion,
		logger:   logger,
	}
}

// GetChampion handles GET /champion. Data is null when no meme qualifies.
func (h *ChampionHandler) GetChampion(w http.ResponseWriter, r *http.Request) {
	champ, err := h.champion.CurrentChampion(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	if champ == nil {
		respondJSON(w, r, h.logger, http.StatusOK, nil)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, champ)
}
