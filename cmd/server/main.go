package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"memberport/internal/audit"
	"memberport/internal/audit/outbox"
	"memberport/internal/billing"
	"memberport/internal/compliance"
	"memberport/internal/document"
	"memberport/internal/dsr"
	"memberport/internal/jwtauth"
	memberservice "memberport/internal/member/service"
	memberstore "memberport/internal/member/store"
	"memberport/internal/message"
	"memberport/internal/platform/config"
	"memberport/internal/platform/database"
	"memberport/internal/platform/httpserver"
	"memberport/internal/platform/logger"
	"memberport/internal/platform/metrics"
	platformredis "memberport/internal/platform/redis"
	"memberport/internal/registration"
	"memberport/internal/retention"
)

// main wires dependencies and runs the server lifecycle. Business logic
// lives in the internal services packages.
func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Store wiring. An unset DATABASE_URL selects the in-memory stores for
	// local development; production runs against PostgreSQL.
	var (
		members       memberStores
		registrations registrationStore
		documents     documentStore
		messages      messageStore
		billingStore  billingStores
		auditStore    audit.Store
	)
	if db != nil {
		members = memberstore.NewPostgres(db)
		registrations = registration.NewPostgres(db)
		documents = document.NewPostgres(db)
		messages = message.NewPostgres(db)
		billingStore = billing.NewPostgres(db)
		auditStore = audit.NewPostgresStore(db)
	} else {
		members = memberstore.NewInMemory()
		registrations = registration.NewInMemory()
		documents = document.NewInMemory()
		messages = message.NewInMemory()
		billingStore = billing.NewInMemory()
		auditStore = audit.NewInMemoryStore()
	}
	recorder := audit.NewRecorder(auditStore, log, m)

	var lock retention.RunLock
	if redisClient != nil {
		lock = retention.NewRedisRunLock(redisClient.Client)
	} else {
		lock = retention.NewLocalRunLock()
	}

	engine := retention.NewEngine(
		retention.PolicyFromConfig(cfg.Retention),
		members, registrations, documents, messages,
		recorder, lock, log, m, cfg.EmailDomain,
	)

	memberSvc := memberservice.New(members, recorder, log)
	dsrSvc := dsr.NewService(members, messages, documents, registrations, billingStore, recorder, log, m)
	complianceSvc := compliance.NewService(members, recorder, log)
	documentSvc := document.NewService(documents, recorder, log)

	jwtSvc := jwtauth.NewService(cfg.JWTSigningKey, "memberport")

	router := newRouter(routerDeps{
		logger:     log,
		registry:   reg,
		engine:     engine,
		compliance: complianceSvc,
		members:    memberSvc,
		dsr:        dsrSvc,
		documents:  documentSvc,
		validator:  jwtSvc,
		db:         db,
		redis:      redisClient,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("server listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.RetentionInterval > 0 {
		scheduler := retention.NewScheduler(engine, cfg.RetentionInterval, log)
		g.Go(func() error {
			log.Info("retention scheduler enabled", "interval", cfg.RetentionInterval)
			if err := scheduler.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if db != nil && len(cfg.Kafka.Brokers) > 0 {
		publisher, err := outbox.New(ctx, db, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		g.Go(func() error {
			log.Info("audit outbox publisher enabled", "topic", cfg.Kafka.Topic)
			if err := publisher.Run(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("server stopped")
	return nil
}

// Store interface unions used only for wiring; each consumer package
// declares the narrow interface it actually needs.
type memberStores interface {
	retention.MemberStore
	memberservice.Store
	dsr.MemberStore
	compliance.MemberCounter
}

type registrationStore interface {
	retention.RegistrationStore
	dsr.RegistrationStore
}

type documentStore interface {
	retention.DocumentStore
	dsr.DocumentStore
	document.Store
}

type messageStore interface {
	retention.MessageStore
	dsr.MessageStore
}

type billingStores interface {
	dsr.BillingStore
}
