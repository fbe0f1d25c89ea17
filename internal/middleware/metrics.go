package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/pkg/metrics"
)

// Metrics observes latency per route template and tracks in-flight requests.
// Paths without a matching route collapse into a single "unmatched" label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.InFlightRequests.Inc()
		defer metrics.InFlightRequests.Dec()

		start := time.Now()
		c.Next()

		metrics.APILatency.
			WithLabelValues(c.Request.Method, routeLabel(c), strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
