package handler

import (
	"github.com/gin-gonic/gin"

	"review-core/internal/handler/response"
)

// HealthCheck reports liveness for load balancers and probes.
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"service": "review-server",
	})
}
