// Package server provides the HTTP API for the content strategy service.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/content-strategist/internal/strategy"
)

// HTTPStatus returns the appropriate HTTP status code for a pipeline error.
// Rejected requests are client errors; everything else, including fatal stage
// failures, reports as a server error.
func HTTPStatus(err error) int {
	var rejected *strategy.RejectedError
	if errors.As(err, &rejected) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
