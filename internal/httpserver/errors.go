package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fooddelivery/internal/domain"
)

func errorBody(status int, message string) gin.H {
	return gin.H{"statusCode": status, "message": message}
}

// writeError maps domain errors onto HTTP statuses. Unexpected errors are
// reported without their details.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrRestaurantConflict), errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	}
	_ = c.Error(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, errorBody(status, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody(http.StatusBadRequest, message))
}
