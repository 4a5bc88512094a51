package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/services"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// MemeHandler handles meme catalog HTTP requests
type MemeHandler struct {
	memes          *services.MemeService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewMemeHandler creates a new meme handler
func NewMemeHandler(memes *services.MemeService, maxUploadBytes int64, logger *zap.Logger) *MemeHandler {
	return &MemeHandler{
		memes:          memes,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// ListMemes handles GET /memes?q=term
func (h *MemeHandler) ListMemes(w http.ResponseWriter, r *http.Request) {
	memes, err := h.memes.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, memes)
}

// UploadMeme handles POST /memes as multipart with title, keywords and file
func (h *MemeHandler) UploadMeme(w http.ResponseWriter, r *http.Request) {
	// Leave room for oversized files to be reported as such
	if err := parseMultipart(w, r, 2*h.maxUploadBytes+(1<<20)); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	files, err := readFiles(r, "file")
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	req := services.UploadRequest{
		Title:    r.FormValue("title"),
		Keywords: r.FormValue("keywords"),
	}
	if len(files) > 0 {
		req.File = files[0]
	}

	result, err := h.memes.Upload(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusCreated, result)
}

// DeleteMeme handles DELETE /memes/{memeID}
func (h *MemeHandler) DeleteMeme(w http.ResponseWriter, r *http.Request) {
	memeID := chi.URLParam(r, "memeID")
	if memeID == "" {
		respondError(w, r, h.logger, appErrors.NewValidationError("meme id is required"))
		return
	}

	if err := h.memes.Delete(r.Context(), memeID); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, map[string]string{"id": memeID})
}
