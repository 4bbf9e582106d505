// internal/common/errors/handler.go
package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"time"
)

// ErrorHandler turns handler errors into JSON responses.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleHTTPError writes err as {"error": code, "message": text} with the
// mapped status. Anything that is not a StandardError becomes a 500.
func (h *ErrorHandler) HandleHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := Normalize(err)
	h.logError(r, stdErr)
	WriteError(w, stdErr)
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected server error.",
		Details:   errDetails(err),
		Status:    http.StatusInternalServerError,
		Timestamp: time.Now().UTC(),
	}
}

// WriteError encodes a StandardError without logging it.
func WriteError(w http.ResponseWriter, stdErr *StandardError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(stdErr.HTTPStatus())
	_ = json.NewEncoder(w).Encode(stdErr)
}

func (h *ErrorHandler) logError(r *http.Request, stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"method":        r.Method,
		"path":          r.URL.Path,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        stdErr.HTTPStatus(),
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	if stdErr.HTTPStatus() >= http.StatusInternalServerError {
		h.logger.Error("request failed", fields)
		return
	}
	h.logger.Warn("request rejected", fields)
}
