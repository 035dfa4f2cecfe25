package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	pkgerrors "github.com/matzehuels/pkggraph/pkg/errors"
	"github.com/matzehuels/pkggraph/pkg/storage"
)

type errorBody struct {
	Code    pkgerrors.Code `json:"code"`
	Message string         `json:"message"`
}

type errorResponse struct {
	Error     errorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// writeError answers with the error's code and the matching status.
// Errors without a code are logged and reported as internal errors.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errorCode(err)
	msg := pkgerrors.UserMessage(err)
	if code == pkgerrors.ErrCodeInternal {
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", requestIDFrom(r.Context()), "error", err)
		msg = "internal error"
	}
	writeJSON(w, pkgerrors.HTTPStatus(code), errorResponse{
		Error:     errorBody{Code: code, Message: msg},
		RequestID: requestIDFrom(r.Context()),
	})
}

func errorCode(err error) pkgerrors.Code {
	if code := pkgerrors.GetCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return pkgerrors.ErrCodeReportNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return pkgerrors.ErrCodeTimeout
	default:
		return pkgerrors.ErrCodeInternal
	}
}
