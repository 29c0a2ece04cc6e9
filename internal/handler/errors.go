package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/placevisit-backend-go/internal/detection"
	"github.com/jengzang/placevisit-backend-go/internal/repository"
	"github.com/jengzang/placevisit-backend-go/internal/service"
	"github.com/jengzang/placevisit-backend-go/pkg/response"
)

// statusFor maps service and detection errors to an HTTP status and a client message
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidPing), errors.Is(err, service.ErrInvalidCatalog):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "Request cancelled"
	case errors.Is(err, detection.ErrInvariantViolation):
		return http.StatusInternalServerError, "Visit state is inconsistent"
	case errors.Is(err, detection.ErrInvalidSettings):
		return http.StatusInternalServerError, "Detection settings are invalid"
	case errors.Is(err, detection.ErrCollaborator):
		return http.StatusServiceUnavailable, "Visit detection is temporarily unavailable"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(c *gin.Context, err error) {
	code, message := statusFor(err)
	response.Error(c, code, message, err)
}
