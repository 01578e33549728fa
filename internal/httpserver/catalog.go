package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func listRestaurantsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := svc.ListRestaurants(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(list), "results": list})
	}
}

func getRestaurantHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := svc.GetRestaurant(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func restaurantMenuHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := svc.Menu(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"count": len(items), "results": items})
	}
}

func getMenuItemHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.GetMenuItem(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	}
}

func searchHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := svc.Search(c.Request.Context(), c.Query("q"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}
