// Package handlers contains the HTTP handlers for the batch API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/retailcore/commerce-batch/pkg/errors"
)

// ErrorBody is the standard error response envelope.
type ErrorBody struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo carries the machine-readable code and the human message.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps err onto the HTTP status for its error code. Unknown
// errors are masked as 500 INTERNAL.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorBody{Error: ErrorInfo{
			Code:    apperrors.ErrCodeInternal.String(),
			Message: "internal server error",
		}})
		return
	}
	writeJSON(w, apperrors.HTTPStatusForCode(appErr.Code), ErrorBody{Error: ErrorInfo{
		Code:    appErr.Code.String(),
		Message: appErr.Message,
	}})
}

// writeBadRequest writes a 400 with the given code and message.
func writeBadRequest(w http.ResponseWriter, code apperrors.ErrorCode, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorBody{Error: ErrorInfo{
		Code:    code.String(),
		Message: message,
	}})
}
