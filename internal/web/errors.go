package web

// errors.go turns handler errors into JSON responses.
//
// Every error is logged server-side with its technical detail and the request
// id, then sent to the client as the user-facing message core.MapError picks
// for it. Sentinel errors decide the status code; handlers supply the status
// used when none matches.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/JonMunkholm/gridkit/internal/core"
	"github.com/JonMunkholm/gridkit/internal/export"
	"github.com/JonMunkholm/gridkit/internal/form"
	"github.com/JonMunkholm/gridkit/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Action  string            `json:"action,omitempty"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"` // form validation only
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("invalid request body")

// statusFor returns the status for known errors, or fallback.
func statusFor(err error, fallback int) int {
	switch {
	case errors.Is(err, core.ErrGridNotFound), errors.Is(err, core.ErrViewNotFound),
		errors.Is(err, errFormNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrUnknownAction), errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrReadOnlySource):
		return http.StatusConflict
	case errors.Is(err, form.ErrInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, export.ErrTooManyRows):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, export.ErrTooManyExports):
		return http.StatusTooManyRequests
	case errors.Is(err, core.ErrTooManyViews):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return fallback
}

// respondError logs err and writes the mapped user message.
func respondError(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	status := statusFor(err, fallback)
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}
	var fieldErrs form.Errors
	if errors.As(err, &fieldErrs) {
		resp.Fields = fieldErrs
	}
	writeErrorResponse(w, resp, status)
}

// respondErrorJSON writes a mapped message without logging.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeErrorResponse(w, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	}, status)
}

func writeErrorResponse(w http.ResponseWriter, resp ErrorResponse, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
