package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Psymen/fundsimulation-sub000/internal/domain"
	"github.com/Psymen/fundsimulation-sub000/internal/metrics"
	"github.com/Psymen/fundsimulation-sub000/internal/storage"
	"github.com/Psymen/fundsimulation-sub000/internal/verification"
)

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, storage.ErrInvalidInput),
		errors.Is(err, metrics.ErrEmptyDataset):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, verification.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrDuplicateKey):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorResponse sends an error body in the shape every handler uses.
func errorResponse(c *gin.Context, statusCode int, message string) {
	c.AbortWithStatusJSON(statusCode, gin.H{
		"error":   true,
		"message": message,
	})
}

// respondError maps err to a status and writes it.
func (s *Server) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("route", c.FullPath()).Msg("request failed")
	}
	errorResponse(c, status, err.Error())
}
