package httpserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	cartsvc "fooddelivery/internal/service/cart"
)

func getCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Get(c.Request.Context(), sessionID(c)))
	}
}

func updateCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in cartsvc.UpdateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		res, err := svc.Update(c.Request.Context(), sessionID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func clearCartHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, svc.Clear(c.Request.Context(), sessionID(c)))
	}
}

func cartConflictHandler(svc CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		restaurantID := strings.TrimSpace(c.Query("restaurantId"))
		if restaurantID == "" {
			badRequest(c, "restaurantId required")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"restaurantId":              restaurantID,
			"isFromDifferentRestaurant": svc.Conflict(c.Request.Context(), sessionID(c), restaurantID),
		})
	}
}
