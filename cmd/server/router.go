package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"obligo/internal/platform/redis"
	"obligo/internal/publishing/handler"
	"obligo/pkg/platform/httputil"
	"obligo/pkg/platform/middleware/auth"
	"obligo/pkg/platform/middleware/request"
	"obligo/pkg/platform/middleware/requesttime"
)

const healthCheckTimeout = 2 * time.Second

type routerDeps struct {
	publishing *handler.Handler
	operators  auth.OperatorValidator
	health     http.HandlerFunc
	logger     *slog.Logger
}

// newRouter mounts the operational endpoints unauthenticated and the
// publishing API behind operator auth.
func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)

	r.Get("/healthz", deps.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireOperator(deps.operators, deps.logger))
		deps.publishing.Register(r)
	})
	return r
}

type healthResponse struct {
	Status   string            `json:"status"`
	Checks   map[string]string `json:"checks"`
	Duration string            `json:"duration"`
}

func healthCheck(db *sql.DB, redisClient *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: map[string]string{}}
		check := func(name string, err error) {
			if err != nil {
				resp.Status = "degraded"
				resp.Checks[name] = err.Error()
				return
			}
			resp.Checks[name] = "ok"
		}
		check("postgres", db.PingContext(ctx))
		if redisClient != nil {
			check("redis", redisClient.Health(ctx))
		}
		resp.Duration = time.Since(start).String()

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}
