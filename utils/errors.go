package utils

import (
	"errors"
	"net/http"

	"certprep-platform/internal/apperr"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	ErrorCode string      `json:"error_code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}

// RespondWithError sends a standardized error response
func RespondWithError(c *gin.Context, statusCode int, errorCode, message string, details interface{}) {
	c.JSON(statusCode, ErrorResponse{
		ErrorCode: errorCode,
		Message:   message,
		Details:   details,
	})
}

// RespondWithBadRequest sends a 400 Bad Request error
func RespondWithBadRequest(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusBadRequest, "bad_request", message, details)
}

// RespondWithUnauthorized sends a 401 Unauthorized error
func RespondWithUnauthorized(c *gin.Context, message string) {
	RespondWithError(c, http.StatusUnauthorized, "unauthorized", message, nil)
}

// RespondWithNotFound sends a 404 Not Found error
func RespondWithNotFound(c *gin.Context, message string) {
	RespondWithError(c, http.StatusNotFound, "not_found", message, nil)
}

// RespondWithInternalError sends a 500 Internal Server Error
func RespondWithInternalError(c *gin.Context, message string, details interface{}) {
	RespondWithError(c, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondWithAppError maps a taxonomy error onto the matching HTTP response.
// Throttled and downstream failures tell the caller to try again.
func RespondWithAppError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, apperr.ErrNotFound):
		RespondWithNotFound(c, err.Error())
	case errors.Is(err, apperr.ErrThrottled):
		RespondWithError(c, http.StatusTooManyRequests, "throttled", "Service is busy, please try again shortly.", nil)
	case errors.Is(err, apperr.ErrDownstream):
		RespondWithError(c, http.StatusServiceUnavailable, "downstream_unavailable", "A backing service is unavailable, please try again.", nil)
	default:
		RespondWithInternalError(c, "Unexpected error", gin.H{"error": err.Error()})
	}
}
