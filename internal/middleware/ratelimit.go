package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/charlesng35/classifieds/pkg/errors"
	"github.com/charlesng35/classifieds/pkg/response"
)

const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Throttle applies a token bucket per client to write endpoints. Clients are
// keyed by principal when authenticated and by IP otherwise.
func Throttle(perSecond float64, burst int) gin.HandlerFunc {
	if perSecond <= 0 || burst <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*clientLimiter)
		sweep   time.Time
	)

	limiterFor := func(key string, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		if now.Sub(sweep) > limiterIdleTTL {
			for k, v := range clients {
				if now.Sub(v.lastSeen) > limiterIdleTTL {
					delete(clients, k)
				}
			}
			sweep = now
		}

		entry, ok := clients[key]
		if !ok {
			entry = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
			clients[key] = entry
		}
		entry.lastSeen = now
		return entry.limiter
	}

	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if principal, ok := PrincipalFrom(c); ok {
			key = "user:" + principal.ID
		}

		reservation := limiterFor(key, time.Now()).Reserve()
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			c.Header("Retry-After", strconv.Itoa(int(delay.Seconds())+1))
			response.Error(c, errors.ErrRateLimit)
			c.Abort()
			return
		}
		c.Next()
	}
}
