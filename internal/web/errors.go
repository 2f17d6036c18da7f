package web

// errors.go maps core errors to HTTP responses.
//
// The error flow:
//  1. Handler gets an error from the service
//  2. Calls respondError(w, r, err)
//  3. The status comes from the error kind; the body from core.MapError
//  4. Storage failures are logged with the request ID and carry the
//     low-level cause as detail

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/matchboard/internal/core"
	"github.com/JonMunkholm/matchboard/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
	Index   *int   `json:"index,omitempty"`
	Line    *int   `json:"line,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// statusFor returns the HTTP status for an error kind.
func statusFor(kind core.Kind) int {
	switch kind {
	case core.KindInputFormat, core.KindValidation:
		return http.StatusBadRequest
	case core.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as an ErrorResponse.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var e *core.Error
	if !errors.As(err, &e) {
		e = core.AsError(err, "Erro inesperado.")
	}

	msg := core.MapError(e)
	status := statusFor(e.Kind)

	body := ErrorResponse{
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}
	if e.Index >= 0 {
		idx := e.Index
		body.Index = &idx
	}
	if e.Line > 0 {
		line := e.Line
		body.Line = &line
	}
	if status >= http.StatusInternalServerError {
		body.Detail = e.Detail()
		logging.FromContext(r.Context()).Error("request error",
			"path", r.URL.Path,
			"method", r.Method,
			"status", status,
			"code", msg.Code,
			"error", err.Error(),
		)
	}

	writeJSON(w, status, body)
}

// badPayload responds with an InvalidPayload input error.
func badPayload(w http.ResponseWriter, r *http.Request, message string) {
	respondError(w, r, &core.Error{
		Kind:    core.KindInputFormat,
		Code:    core.CodeInvalidPayload,
		Message: message,
		Index:   -1,
	})
}
