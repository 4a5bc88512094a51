package handlers

import (
	"net/http"

	"go.uber.org/zap"

	domainservices "github.com/Jabramco/memebase/domain/services"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// TitleHandler suggests meme titles from file names
type TitleHandler struct {
	suggester domainservices.TitleSuggester
	logger    *zap.Logger
}

// NewTitleHandler creates a new title handler
func NewTitleHandler(suggester domainservices.TitleSuggester, logger *zap.Logger) *TitleHandler {
	return &TitleHandler{
		suggester: suggester,
		logger:    logger,
	}
}

// TitleSuggestion pairs a file name with its suggested title
type TitleSuggestion struct {
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

// Suggest handles GET /titles/suggest?filename=a.png&filename=b.png
func (h *TitleHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	names := r.URL.Query()["filename"]
	if len(names) == 0 {
		respondError(w, r, h.logger, appErrors.NewValidationError("filename is required"))
		return
	}

	suggestions := make([]TitleSuggestion, 0, len(names))
	for _, name := range names {
		suggestions = append(suggestions, TitleSuggestion{Filename: name, Title: h.suggester.SuggestTitle(name)})
	}
	respondJSON(w, r, h.logger, http.StatusOK, suggestions)
}
