package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/gym-manager-api/internal/service"
	appErrors "github.com/noah-isme/gym-manager-api/pkg/errors"
	"github.com/noah-isme/gym-manager-api/pkg/response"
)

// Metrics returns middleware that records request duration and count per
// route template.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}

// RequireReady rejects requests with 503 until ready reports true.
func RequireReady(ready func() bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ready != nil && !ready() {
			response.Error(c, appErrors.Clone(appErrors.ErrUnavailable, "state is still loading"))
			c.Abort()
			return
		}
		c.Next()
	}
}
