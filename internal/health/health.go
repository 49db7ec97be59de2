// Package health aggregates the liveness of the API, the database pool and
// redis into the /api/health report.
package health

import (
	"context"
	"math"
	"time"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

type Check struct {
	Status           string   `json:"status"`
	Message          string   `json:"message"`
	ConnectionTimeMS *float64 `json:"connection_time_ms,omitempty"`
	Driver           string   `json:"driver,omitempty"`
	Error            string   `json:"error,omitempty"`
}

type Report struct {
	Status    string           `json:"status"`
	Message   string           `json:"message"`
	Timestamp string           `json:"timestamp"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Pinger is satisfied by the storage pool and by the redis client holder.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Service struct {
	db      Pinger
	redis   Pinger
	version string
}

func NewService(db, redis Pinger, version string) *Service {
	return &Service{db: db, redis: redis, version: version}
}

// Check runs every probe regardless of earlier failures so the report
// always names all degraded dependencies at once.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]Check{
		"api": {Status: StatusOK, Message: "API is healthy"},
		"database": timed(ctx, s.db, Check{
			Message: "Database connection successful",
			Driver:  "pgx",
		}, "Database connection failed"),
		"redis": timed(ctx, s.redis, Check{
			Message: "Redis connection successful",
		}, "Redis connection failed"),
	}

	status := StatusOK
	message := "All systems operational"
	for _, c := range checks {
		if c.Status == StatusError {
			status = StatusError
			message = "Some systems have issues"
			break
		}
	}

	return Report{
		Status:    status,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
		Checks:    checks,
	}
}

func timed(ctx context.Context, p Pinger, ok Check, failMessage string) Check {
	start := time.Now()
	if err := p.Ping(ctx); err != nil {
		return Check{Status: StatusError, Message: failMessage, Error: err.Error()}
	}

	ms := math.Round(float64(time.Since(start).Microseconds())/10) / 100
	ok.Status = StatusOK
	ok.ConnectionTimeMS = &ms
	return ok
}
