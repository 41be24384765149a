package web

// errors.go provides unified error responses for the API.
//
// Each failure has a code for support reference:
//
//	REG001 - Unknown table: no mapping writes to the requested table
//	REG002 - Unknown source: no mappings for the requested source system
//	PRE001 - Preflight unavailable: the server runs without a checker
//	PRE002 - Preflight failed: the run was cancelled or timed out
//
// The technical error is logged with the request ID; clients only see the
// message and code.

import (
	"net/http"

	"github.com/JonMunkholm/bronze/internal/logging"
)

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// userMessage is the client-facing side of an error.
type userMessage struct {
	Code    string
	Message string
}

var (
	msgUnknownTable         = userMessage{Code: "REG001", Message: "No mapping writes to this table"}
	msgUnknownSource        = userMessage{Code: "REG002", Message: "No mappings for this source system"}
	msgPreflightUnavailable = userMessage{Code: "PRE001", Message: "Preflight checks are not configured"}
	msgPreflightFailed      = userMessage{Code: "PRE002", Message: "Preflight run did not complete"}
)

// respondError logs err with request context and writes msg as JSON.
func respondError(w http.ResponseWriter, r *http.Request, status int, msg userMessage, err error) {
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
	}
	if err != nil {
		args = append(args, "error", err.Error())
	}
	logging.FromContext(r.Context()).Warn("request error", args...)

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Code:    msg.Code,
	})
}
