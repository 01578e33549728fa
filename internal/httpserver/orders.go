package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "fooddelivery/internal/service/order"
)

type cancelRequest struct {
	Reason string `json:"reason"`
}

type ratingRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Review string `json:"review"`
}

type statusRequest struct {
	Status  string `json:"status" binding:"required"`
	Message string `json:"message"`
}

func placeOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in ordersvc.PlaceInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "invalid body")
			return
		}
		o, err := svc.Place(c.Request.Context(), sessionID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.List(c.Request.Context(), sessionID(c), ordersvc.ListInput{
			Status:     c.Query("status"),
			ActiveOnly: c.Query("active") == "true",
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), sessionID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func cancelOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				badRequest(c, "invalid body")
				return
			}
		}
		o, err := svc.Cancel(c.Request.Context(), sessionID(c), c.Param("id"), req.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func rateOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ratingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "rating required")
			return
		}
		o, err := svc.Rate(c.Request.Context(), sessionID(c), c.Param("id"), req.Rating, req.Review)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func reorderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Reorder(c.Request.Context(), sessionID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func updateOrderStatusHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "status required")
			return
		}
		o, err := svc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status, req.Message)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, o)
	}
}
