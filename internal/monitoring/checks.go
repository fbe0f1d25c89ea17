package monitoring

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const defaultProbeTimeout = 2 * time.Second

// Pinger is implemented by cache backends that can verify their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Database probes the database connection.
func Database(db *gorm.DB, timeout time.Duration) Check {
	return Check{Name: "database", Run: func(ctx context.Context) ProbeResult {
		start := time.Now()
		if db == nil {
			return ProbeResult{Status: StatusDown, Details: "database not configured"}
		}
		sqlDB, err := db.DB()
		if err != nil {
			return ResultFromError(err, time.Since(start))
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()
		return ResultFromError(sqlDB.PingContext(probeCtx), time.Since(start))
	}}
}

// Cache probes an external cache. The service keeps working without it, so
// an unreachable cache only degrades the report.
func Cache(name string, pinger Pinger, timeout time.Duration) Check {
	return Check{Name: name, Run: func(ctx context.Context) ProbeResult {
		start := time.Now()
		if pinger == nil {
			return ProbeResult{Status: StatusDegraded, Details: "cache unavailable"}
		}

		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout))
		defer cancel()
		if err := pinger.Ping(probeCtx); err != nil {
			return ProbeResult{Status: StatusDegraded, Details: err.Error(), Duration: time.Since(start)}
		}
		return ProbeResult{Status: StatusUp, Duration: time.Since(start)}
	}}
}

func chooseTimeout(provided time.Duration) time.Duration {
	if provided <= 0 {
		return defaultProbeTimeout
	}
	return provided
}
