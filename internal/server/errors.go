package server

import (
	"errors"
	"net/http"

	"github.com/fentz26/recur/internal/board"
	"github.com/fentz26/recur/internal/store"
)

// ErrInvalidJSON indicates a request body could not be decoded.
var ErrInvalidJSON = errors.New("invalid json")

// statusFor maps an error to the HTTP status it is reported with.
func statusFor(err error) int {
	switch {
	case errors.Is(err, board.ErrTaskNotFound), errors.Is(err, store.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrEmptyDescription), errors.Is(err, ErrInvalidJSON):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
