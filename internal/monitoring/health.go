// Package monitoring evaluates dependency probes for the health endpoints.
package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProbeStatus encodes the outcome of a probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// Report aggregates probe results. Healthy is false when any probe is down;
// degraded probes lower Status without failing the report.
type Report struct {
	Healthy bool          `json:"healthy"`
	Status  ProbeStatus   `json:"status"`
	Checks  []ProbeResult `json:"checks"`
}

// Check is a named dependency probe.
type Check struct {
	Name string
	Run  func(ctx context.Context) ProbeResult
}

// Evaluate runs the checks in order. A panicking probe counts as down.
func Evaluate(ctx context.Context, checks ...Check) Report {
	if ctx == nil {
		ctx = context.Background()
	}
	report := Report{Healthy: true, Status: StatusUp, Checks: make([]ProbeResult, 0, len(checks))}

	for _, check := range checks {
		result := run(ctx, check)
		report.Checks = append(report.Checks, result)

		switch result.Status {
		case StatusDown:
			report.Healthy = false
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status == StatusUp {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func run(ctx context.Context, check Check) (result ProbeResult) {
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			result = ProbeResult{Status: StatusDown, Details: fmt.Sprint(rec)}
		}
		if result.Status == "" {
			result.Status = StatusDown
		}
		if result.Duration == 0 {
			result.Duration = time.Since(start)
		}
		result.Component = check.Name
	}()

	if check.Run == nil {
		return ProbeResult{Status: StatusDown, Details: "probe not implemented"}
	}
	return check.Run(ctx)
}

// ResultFromError converts an error into a ProbeResult. Timeouts degrade
// rather than fail.
func ResultFromError(err error, duration time.Duration) ProbeResult {
	if err == nil {
		return ProbeResult{Status: StatusUp, Duration: duration}
	}
	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}
	return ProbeResult{Status: status, Details: err.Error(), Duration: duration}
}
