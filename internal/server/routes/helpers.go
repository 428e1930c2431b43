package routes

import (
	"errors"
	"net/http"

	"github.com/trellis-labs/trellis/backend/pkg/store"
)

type messageResponse struct {
	Message string `json:"message"`
}

// storeErrorStatus maps store errors onto HTTP statuses: unknown ids are 404,
// invalid references are 400, anything else is a 500.
func storeErrorStatus(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidReference):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
