package errorhandler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vendora/vendora-api/internal/pkg/logger"
	"github.com/vendora/vendora-api/internal/pkg/response"
)

// HandleError logs the failure with the request logger and writes the error envelope.
// The underlying error is never echoed to the client.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := logger.FromContext(ctx).Error().
		Str("error_code", code).
		Int("status_code", status)
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(message)

	response.Error(w, status, code, message)
}

// HandleRetryable logs a remote failure and tells the client it may retry.
func HandleRetryable(ctx context.Context, w http.ResponseWriter, message string, err error) {
	logger.FromContext(ctx).Warn().
		Err(err).
		Str("error_code", "REMOTE_FAILURE").
		Msg(message)

	response.ServiceUnavailable(w, message)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	logger.FromContext(ctx).Warn().
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}

// LogBackgroundError records a failure of a fire-and-forget task.
func LogBackgroundError(ctx context.Context, task string, err error) {
	logger.FromContext(ctx).Error().
		Str("task", task).
		Err(err).
		Msg("Background task failed")
}
