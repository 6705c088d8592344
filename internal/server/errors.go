package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	apperr "github.com/matzehuels/tapestry/pkg/errors"
	"github.com/matzehuels/tapestry/pkg/observability"
)

type errorBody struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

type errorDetail struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code apperr.Code) int {
	switch code {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidSurface, apperr.ErrCodeInvalidFormat,
		apperr.ErrCodeInvalidScale, apperr.ErrCodeInvalidParams, apperr.ErrCodeInvalidSeed:
		return http.StatusBadRequest
	case apperr.ErrCodeNotFound, apperr.ErrCodePieceNotFound, apperr.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeUnsupported:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case apperr.ErrCodeNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperr.GetCode(err)
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		code = apperr.ErrCodeInvalidInput
	}
	if code == "" {
		code = apperr.ErrCodeInternal
	}
	status := statusFor(code)
	if tooLarge != nil {
		status = http.StatusRequestEntityTooLarge
	}

	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.cfg.Logger.Error("request failed", "path", r.URL.Path, "request_id", RequestID(r.Context()), "error", err)
		msg = "internal error"
	}
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)

	writeJSON(w, status, errorBody{
		Error:     errorDetail{Code: code, Message: msg},
		RequestID: RequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)+1))
	w.WriteHeader(status)
	w.Write(data)
	w.Write([]byte("\n"))
}
