package usecase

import (
	"context"
	"time"
)

// Pinger is satisfied by the database pool and the redis health check.
type Pinger func(ctx context.Context) error

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	checks map[string]Pinger
}

// NewHealthUsecase checks each named dependency; nil pingers are reported
// as disabled.
func NewHealthUsecase(checks map[string]Pinger) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	out := map[string]string{"status": "ok"}
	healthy := true
	for name, ping := range u.checks {
		switch {
		case ping == nil:
			out[name] = "disabled"
		case ping(ctx) != nil:
			out[name] = "down"
			healthy = false
		default:
			out[name] = "up"
		}
	}
	if !healthy {
		out["status"] = "degraded"
	}
	return out, healthy
}
