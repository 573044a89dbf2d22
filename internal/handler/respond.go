package handler

import (
	"errors"
	"net/http"

	"gavel/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// abortWithError maps the service error taxonomy onto HTTP status codes.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrStateConflict):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		status = http.StatusPaymentRequired
	case errors.Is(err, apperrors.ErrForbidden):
		status = http.StatusForbidden
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
