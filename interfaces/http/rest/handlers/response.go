package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"go.uber.org/zap"

	appErrors "github.com/Jabramco/memebase/pkg/errors"
	"github.com/Jabramco/memebase/pkg/utils"
)

// Response is the envelope of every API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorBody describes a failed request
type ErrorBody struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries request metadata
type Meta struct {
	RequestID string `json:"requestId,omitempty"`
	Timestamp string `json:"timestamp"`
}

func meta(r *http.Request) Meta {
	return Meta{
		RequestID: middleware.GetReqID(r.Context()),
		Timestamp: utils.FormatRFC3339(time.Now()),
	}
}

func respondJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := Response{Success: status < 400, Data: data, Meta: meta(r)}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// respondError maps err onto its HTTP status. Unexpected errors are logged
// and reported without detail.
func respondError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := appErrors.HTTPStatus(err)
	body := &ErrorBody{Type: string(appErrors.ErrorTypeInternal), Message: "internal server error"}

	if appErr := appErrors.GetAppError(err); appErr != nil {
		body.Type = string(appErr.Type)
		body.Code = appErr.Code
		if status < http.StatusInternalServerError {
			body.Message = appErr.Message
			body.Details = appErr.Details
		}
	}
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.String("requestID", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := Response{Success: false, Error: body, Meta: meta(r)}
	if encErr := json.NewEncoder(w).Encode(resp); encErr != nil {
		logger.Error("Failed to encode response", zap.Error(encErr))
	}
}
