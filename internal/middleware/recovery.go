package middleware

import (
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/logger"
	"github.com/charlesng35/classifieds/pkg/metrics"
	"github.com/charlesng35/classifieds/pkg/response"
)

// Recovery turns handler panics into the opaque internal error envelope. The
// panic value never reaches the client.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			recovered := recover()
			if recovered == nil {
				return
			}

			route := routeLabel(c)
			log := logger.WithModule("http").With(
				zap.String("method", c.Request.Method),
				zap.String("route", route),
				zap.String("client_ip", c.ClientIP()),
			)

			if brokenConnection(recovered) {
				log.Warn("client connection closed mid-response", zap.Any("error", recovered))
				c.Abort()
				return
			}

			metrics.PanicsRecovered.WithLabelValues(route).Inc()
			log.Error("handler panic", zap.Any("error", recovered), zap.Stack("stack"))
			response.Error(c, apperrors.ErrInternalServer)
			c.Abort()
		}()
		c.Next()
	}
}

// NotFoundHandler answers unknown routes with the error envelope.
func NotFoundHandler(c *gin.Context) {
	response.Error(c, apperrors.ErrNotFound.WithMessage("Route "+c.Request.URL.Path+" not found"))
}

// brokenConnection reports panics raised while writing to a client that has gone away.
func brokenConnection(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	var opErr *net.OpError
	if !errors.As(err, &opErr) {
		return false
	}
	var sysErr *os.SyscallError
	if errors.As(opErr, &sysErr) {
		return errors.Is(sysErr.Err, syscall.EPIPE) || errors.Is(sysErr.Err, syscall.ECONNRESET)
	}
	return false
}

func routeLabel(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
