package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	sessionsvc "fooddelivery/internal/service/session"
)

func createSessionHandler(svc SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		issued, err := svc.Issue(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, issued)
	}
}

// endSessionHandler revokes the bearer token and discards the session's cart.
// Expired tokens can still be revoked.
func endSessionHandler(sessions SessionService, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "missing bearer token")
			return
		}
		sid, err := sessions.Revoke(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, sessionsvc.ErrInvalidToken) {
				abortUnauthorized(c, "invalid session")
				return
			}
			writeError(c, err)
			return
		}
		if err := carts.Discard(c.Request.Context(), sid); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
