package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	adminhandler "memberport/internal/admin/handler"
	platformredis "memberport/internal/platform/redis"
	privacyhandler "memberport/internal/privacy/handler"
	"memberport/pkg/platform/httputil"
	authmw "memberport/pkg/platform/middleware/auth"
	"memberport/pkg/platform/middleware/logging"
	"memberport/pkg/platform/middleware/metadata"
	"memberport/pkg/platform/middleware/request"
	"memberport/pkg/platform/middleware/requesttime"
)

type routerDeps struct {
	logger     *slog.Logger
	registry   *prometheus.Registry
	engine     adminhandler.RetentionRunner
	compliance adminhandler.ComplianceService
	members    adminhandler.MemberService
	dsr        dsrServices
	documents  adminhandler.DocumentService
	validator  authmw.TokenValidator
	db         *sql.DB
	redis      *platformredis.Client
}

type dsrServices interface {
	adminhandler.DSRService
	privacyhandler.DSRService
}

func newRouter(deps routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(logging.Recovery(deps.logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(logging.Logger(deps.logger))

	admin := adminhandler.New(deps.engine, deps.compliance, deps.members, deps.dsr, deps.documents, deps.validator, deps.logger)
	admin.Register(r)

	privacy := privacyhandler.New(deps.dsr, deps.validator, deps.logger)
	privacy.Register(r)

	r.Handle("/metrics", promhttp.HandlerFor(deps.registry, promhttp.HandlerOpts{}))
	r.Get("/healthz", healthHandler(deps))

	return r
}

// healthHandler reports liveness plus dependency health. Optional
// dependencies that are not configured are simply absent from the report.
func healthHandler(deps routerDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		report := map[string]string{"status": "ok"}

		if deps.db != nil {
			if err := deps.db.PingContext(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report["status"] = "degraded"
				report["database"] = err.Error()
			} else {
				report["database"] = "ok"
			}
		}
		if deps.redis != nil {
			if err := deps.redis.Health(r.Context()); err != nil {
				status = http.StatusServiceUnavailable
				report["status"] = "degraded"
				report["redis"] = err.Error()
			} else {
				report["redis"] = "ok"
			}
		}

		httputil.WriteJSON(w, status, report)
	}
}
