package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"astrarium/internal/auth/revocation"
	cataloghandler "astrarium/internal/catalog/handler"
	"astrarium/internal/catalog/policy"
	catalogservice "astrarium/internal/catalog/service"
	catalogstore "astrarium/internal/catalog/store"
	discoveryhandler "astrarium/internal/discovery/handler"
	discoveryservice "astrarium/internal/discovery/service"
	discoverystore "astrarium/internal/discovery/store"
	jwttoken "astrarium/internal/jwt_token"
	"astrarium/internal/platform/config"
	"astrarium/internal/platform/httpserver"
	"astrarium/internal/platform/logger"
	"astrarium/internal/platform/metrics"
	"astrarium/internal/platform/middleware"
	platformredis "astrarium/internal/platform/redis"
	"astrarium/pkg/platform/audit"
	auditworker "astrarium/pkg/platform/audit/worker"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		log.Error("ping database", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisAddr)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	var revocationChecker middleware.TokenRevocationChecker
	if redisClient != nil {
		defer redisClient.Close()
		revocationChecker = revocation.NewRedisTRL(redisClient)
	} else {
		log.Warn("REDIS_ADDR not set; token revocation list disabled")
	}

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, "astrarium", "astrarium")
	validator := jwttoken.NewMiddlewareAdapter(jwtService)
	m := metrics.New()

	bodyStore := catalogstore.NewPostgres(db)
	discoveryStore := discoverystore.NewPostgres(db)
	auditor := audit.NewPublisher(audit.NewPostgresStore(db))
	txRunner := newPostgresTxRunner(db)

	workflow := discoveryservice.New(bodyStore, discoveryStore, txRunner, auditor, m)
	evaluator := policy.New(discoveryStore)
	catalog := catalogservice.New(bodyStore, evaluator, txRunner, auditor, m)

	discoveryHandler := discoveryhandler.New(workflow, log)
	catalogHandler := cataloghandler.New(catalog, log)

	router := chi.NewRouter()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(log))
	router.Use(middleware.Timeout(config.RequestTimeout))
	router.Use(middleware.ContentTypeJSON)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Method(http.MethodGet, "/metrics", promhttp.Handler())

	router.Route("/api", func(r chi.Router) {
		catalogHandler.RegisterPublic(r)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(validator, revocationChecker, log))
			discoveryHandler.Register(r)
			catalogHandler.RegisterProtected(r)
		})
	})

	srv := httpserver.New(cfg.Addr, router)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting astrarium", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := kgo.NewClient(kgo.SeedBrokers(cfg.KafkaBrokers...))
		if err != nil {
			log.Error("connect kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		w := auditworker.New(db, kafkaClient, cfg.AuditTopic, log)
		if err := w.EnsureTopic(ctx, 1, 1); err != nil {
			log.Error("ensure audit topic", "error", err)
			os.Exit(1)
		}
		g.Go(func() error {
			err := w.Run(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		log.Warn("KAFKA_BROKERS not set; audit events stay in the outbox")
	}

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
