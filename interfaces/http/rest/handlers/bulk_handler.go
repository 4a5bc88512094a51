package handlers

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"go.uber.org/zap"

	"github.com/Jabramco/memebase/application/services"
	appErrors "github.com/Jabramco/memebase/pkg/errors"
)

// maxBulkFiles bounds how many images one bulk request may carry
const maxBulkFiles = 50

// overrideField matches the titles[i] and keywords[i] form fields
var overrideField = regexp.MustCompile(`^(titles|keywords)\[(\d+)\]$`)

// BulkHandler handles bulk import HTTP requests
type BulkHandler struct {
	bulk           *services.BulkIngestionService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulk *services.BulkIngestionService, maxUploadBytes int64, logger *zap.Logger) *BulkHandler {
	return &BulkHandler{
		bulk:           bulk,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// BatchPreview is the planned import returned before saving
type BatchPreview struct {
	Items          []*services.BulkCandidate `json:"items"`
	DuplicateCount int                       `json:"duplicateCount"`
}

// Preview handles POST /memes/bulk/preview: suggested titles and duplicate
// flags for the selected files
func (h *BulkHandler) Preview(w http.ResponseWriter, r *http.Request) {
	batch, err := h.readBatch(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, BatchPreview{
		Items:          batch.Items(),
		DuplicateCount: batch.DuplicateCount(),
	})
}

// SaveAll handles POST /memes/bulk. Form fields titles[i] and keywords[i]
// override the suggestions for file i.
func (h *BulkHandler) SaveAll(w http.ResponseWriter, r *http.Request) {
	batch, err := h.readBatch(w, r)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	if err := applyOverrides(batch, r.MultipartForm.Value); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	result, err := h.bulk.SaveAll(r.Context(), batch, func(index int, state services.UploadState) {
		h.logger.Debug("Bulk item progress", zap.Int("index", index), zap.String("state", string(state)))
	})
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	respondJSON(w, r, h.logger, http.StatusOK, result)
}

func (h *BulkHandler) readBatch(w http.ResponseWriter, r *http.Request) (*services.Batch, error) {
	if err := parseMultipart(w, r, maxBulkFiles*h.maxUploadBytes+(1<<20)); err != nil {
		return nil, err
	}
	files, err := readFiles(r, "files")
	if err != nil {
		return nil, err
	}
	if len(files) > maxBulkFiles {
		return nil, appErrors.NewValidationError(fmt.Sprintf("at most %d files per bulk import", maxBulkFiles))
	}
	return h.bulk.NewBatch(files)
}

// applyOverrides sets the titles and keywords sent for individual files. An
// override for a file that is not in the batch rejects the request.
func applyOverrides(batch *services.Batch, form map[string][]string) error {
	for field, values := range form {
		m := overrideField.FindStringSubmatch(field)
		if m == nil || len(values) == 0 {
			continue
		}
		index, err := strconv.Atoi(m[2])
		if err != nil {
			return appErrors.NewValidationError("invalid form field " + field)
		}
		if m[1] == "titles" {
			err = batch.SetTitle(index, values[0])
		} else {
			err = batch.SetKeywords(index, values[0])
		}
		if err != nil {
			return err
		}
	}
	return nil
}
