package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/classifieds/internal/monitoring"
	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

// Health evaluates the readiness probes. A probe that is down reports 503;
// degraded probes still answer 200 with the details in the report.
func Health(checks ...monitoring.Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		report := monitoring.Evaluate(requestContext(c), checks...)
		if !report.Healthy {
			response.Error(c, errors.New("SERVICE_UNAVAILABLE", errors.KindInternal, "Service unavailable", http.StatusServiceUnavailable))
			return
		}
		response.Success(c, http.StatusOK, report)
	}
}
