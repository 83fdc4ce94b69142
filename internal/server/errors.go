package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	neorecipe "github.com/saulfrancisco-ruizacevedo/go-neorecipe"
)

// Transport-level error codes. Store failures keep their neorecipe codes.
const (
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      string         `json:"code"`
	Message   string         `json:"message"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"requestId"`
	Timestamp time.Time      `json:"timestamp"`
	Retryable bool           `json:"retryable"`
}

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) (int, string) {
	code := neorecipe.CodeOf(err)
	switch code {
	case neorecipe.ErrCodeInvalidID:
		return http.StatusBadRequest, string(code)
	case neorecipe.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	case neorecipe.ErrCodeNotCreated, neorecipe.ErrCodeMalformedResult:
		return http.StatusInternalServerError, string(code)
	case neorecipe.ErrCodeUpstreamQuery:
		return http.StatusBadGateway, string(code)
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

// writeOpError writes err returned by a catalog operation.
func (s *Server) writeOpError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	retryable := code == string(neorecipe.ErrCodeUpstreamQuery)

	var details map[string]any
	var e *neorecipe.Error
	if errors.As(err, &e) && e.Op != "" {
		details = map[string]any{"operation": e.Op}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("operation failed",
			"requestID", r.Context().Value(contextKeyRequestID),
			"path", r.URL.Path,
			"error", err,
		)
	}
	s.writeError(w, r, status, code, err.Error(), retryable, details)
}

// writeError writes error response
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, statusCode int,
	code, message string, retryable bool, details map[string]any) {

	requestID, _ := r.Context().Value(contextKeyRequestID).(string)
	if requestID == "" {
		requestID = uuid.New().String()
	}

	respondJSON(w, statusCode, ErrorResponse{
		Code:      code,
		Message:   message,
		Details:   details,
		RequestID: requestID,
		Timestamp: time.Now().UTC(),
		Retryable: retryable,
	})
}

// respondJSON serializes data before writing headers so encoding failures
// still produce a clean 500.
func respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")

	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(data); err != nil {
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(statusCode)
	_, _ = w.Write(buf.Bytes())
}
