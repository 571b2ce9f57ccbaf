package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/algonet/backend/internal/errors"
	"github.com/algonet/backend/internal/logger"
	"github.com/algonet/backend/internal/validator"
)

// ErrorBody is the uniform error envelope returned for every failure:
// {"error": true, "code": "...", "message": "..."}.
type ErrorBody struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code.
// If encoding fails, the error is logged but headers are already sent so nothing can be done.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteErrorCode writes the uniform error envelope with an explicit status and code.
func WriteErrorCode(w http.ResponseWriter, status int, code, message string) {
	WriteJSON(w, status, ErrorBody{Error: true, Code: code, Message: message})
}

// WriteError converts err into the uniform error envelope. AppErrors keep
// their code and status; anything else is reported as INTERNAL_ERROR and
// logged through the request-scoped logger if one is present, else fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		WriteErrorCode(w, appErr.Status, appErr.Code, appErr.Message)
		return
	}

	l := logger.FromContext(r.Context())
	if l == slog.Default() {
		l = fallback
	}
	l.ErrorContext(r.Context(), "internal error",
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	WriteErrorCode(w, http.StatusInternalServerError, apperrors.CodeInternal, "an internal error occurred")
}

// WriteValidationError writes a VALIDATION_ERROR envelope. A field-level
// message from the validator is preferred over the raw decode error.
func WriteValidationError(w http.ResponseWriter, err error) {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		WriteErrorCode(w, http.StatusBadRequest, apperrors.CodeValidationError, valErr.Error())
		return
	}
	WriteErrorCode(w, http.StatusBadRequest, apperrors.CodeValidationError, err.Error())
}
