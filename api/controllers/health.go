package controllers

import (
	"context"
	"net/http"

	"github.com/shelfwise/bookstore-backend/api/responses"
	"github.com/shelfwise/bookstore-backend/pkg/config"
)

// Pinger is the health-check surface infra clients expose.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bookstore-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports readiness, checking whichever dependencies are
// wired. A nil pinger is skipped.
func HealthReady(cfg *config.Config, deps map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Bookstore-Env", cfg.App.Env)
		checks := map[string]string{}
		healthy := true
		for name, dep := range deps {
			if dep == nil {
				continue
			}
			if err := dep.Ping(r.Context()); err != nil {
				checks[name] = err.Error()
				healthy = false
				continue
			}
			checks[name] = "ok"
		}
		status := map[string]any{"status": "ready", "checks": checks}
		if !healthy {
			status["status"] = "degraded"
			responses.WriteSuccessStatus(w, http.StatusServiceUnavailable, status)
			return
		}
		responses.WriteSuccess(w, status)
	}
}
