package store

import (
	"errors"

	"juiceshop/internal/api"
)

// errorMessage prefers the message the server put in the error body and
// falls back to a generic per-operation string.
func errorMessage(err error, fallback string) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
