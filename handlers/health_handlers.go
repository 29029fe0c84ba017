package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

func HealthCheck(environment string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"message":     "Analytics service is running",
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
			"go_version":  runtime.Version(),
			"environment": environment,
		})
	}
}
