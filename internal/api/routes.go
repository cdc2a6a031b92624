package api

import (
	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/sales", handler.GetSales)
		api.GET("/property/:property_id/history", handler.GetPropertyHistory)
		api.GET("/stats/monthly", handler.GetMonthlyStats)
		api.GET("/stats/top-suburbs", handler.GetTopSuburbs)
		api.GET("/growth/streets", handler.GetStreetGrowth)
		api.GET("/growth/suburbs", handler.GetSuburbGrowth)
		api.GET("/summary/streets", handler.GetStreetSummaries)
		api.GET("/summary/suburbs", handler.GetSuburbSummaries)
		api.POST("/analyze", handler.RunAnalysis)
		api.POST("/ingest", handler.RunIngest)
		api.POST("/geocode", handler.GeocodeSales)
	}
}
