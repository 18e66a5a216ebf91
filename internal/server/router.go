package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"review-core/internal/handler"
	"review-core/pkg/monitor"
)

// NewHTTPRouter wires the gin engine: middleware, probes, and the
// review API.
func NewHTTPRouter(reviewHandler *handler.ReviewHandler) *gin.Engine {
	monitor.Init()

	r := gin.Default()
	r.Use(monitor.PrometheusMiddleware())

	r.GET("/health", handler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		reviews := api.Group("/reviews")
		{
			reviews.POST("", reviewHandler.Start)
			reviews.GET("/:id", reviewHandler.Snapshot)
			reviews.POST("/:id/guarantees", reviewHandler.EditGuarantee)
			reviews.POST("/:id/approve", reviewHandler.Approve)
			reviews.POST("/:id/cancel", reviewHandler.Cancel)
			reviews.GET("/:id/submission", reviewHandler.SubmissionState)
			reviews.GET("/:id/raw", reviewHandler.RawTransaction)
			reviews.DELETE("/:id", reviewHandler.Close)
		}
	}

	return r
}
