package middleware

import (
	"strconv"
	"time"

	"github.com/ErlanBelekov/taskboard/internal/metrics"
	"github.com/gin-gonic/gin"
)

// unmatchedRoute labels requests no route matched, so scanners probing random
// paths cannot blow up label cardinality.
const unmatchedRoute = "unmatched"

// Metrics records latency, count and in-flight requests labelled by route
// template (/api/tasks/:id), never by raw path.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metrics.HTTPInFlight.Inc()
		start := time.Now()
		defer metrics.HTTPInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}

		metrics.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
	}
}
