// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal service
// packages.
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

	"golang.org/x/sync/errgroup"

	analyticshandler "tapcard/internal/analytics/handler"
	analyticsmetrics "tapcard/internal/analytics/metrics"
	analyticsservice "tapcard/internal/analytics/service"
	visitstore "tapcard/internal/analytics/store/visit"
	authhandler "tapcard/internal/auth/handler"
	authmetrics "tapcard/internal/auth/metrics"
	authservice "tapcard/internal/auth/service"
	userstore "tapcard/internal/auth/store/user"
	"tapcard/internal/auth/token"
	cardhandler "tapcard/internal/card/handler"
	cardservice "tapcard/internal/card/service"
	cardstore "tapcard/internal/card/store/card"
	"tapcard/internal/identity"
	"tapcard/internal/platform/config"
	"tapcard/internal/platform/httpserver"
	"tapcard/internal/platform/logger"
	platformredis "tapcard/internal/platform/redis"
	ratelimitmetrics "tapcard/internal/ratelimit/metrics"
	ratelimitmw "tapcard/internal/ratelimit/middleware"
	ratelimitstore "tapcard/internal/ratelimit/store"
	httptransport "tapcard/internal/transport/http"
	"tapcard/pkg/platform/audit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	// Stores: Postgres when configured, in-memory otherwise.
	users := authservice.UserStore(userstore.NewMemory())
	cards := cardservice.Store(cardstore.NewMemory())
	visits := analyticsservice.Store(visitstore.NewMemory())
	if cfg.Postgres.DSN != "" {
		db, err := sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(db)
		cards = cardstore.NewPostgres(db)
		visits = visitstore.NewPostgres(db)
	} else {
		log.Warn("POSTGRES_DSN not set, using in-memory stores")
	}

	// Audit publisher: Kafka when brokers are configured.
	var audits audit.Publisher = audit.NopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafka, err := audit.NewKafkaPublisher(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Error("failed to connect audit publisher", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		audits = kafka
	}

	// Rate limit counters: Redis when configured, per-instance otherwise.
	var counters ratelimitmw.Store = ratelimitstore.NewMemory()
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("failed to connect redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		counters = ratelimitstore.NewRedis(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, rate limits are per instance")
	}

	tokens := token.NewService(token.Config{
		AccessSecret:  []byte(cfg.Auth.AccessSecret),
		RefreshSecret: []byte(cfg.Auth.RefreshSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		Issuer:        cfg.Auth.Issuer,
	})
	verifier := identity.NewGoogleVerifier(cfg.Auth.IdentityProject)

	auth := authservice.New(verifier, users, tokens, log, audits, authmetrics.New())
	cardSvc := cardservice.New(cards, log)
	analyticsSvc := analyticsservice.New(visits, log, analyticsmetrics.New())

	limiter := ratelimitmw.New(counters, log, audits, ratelimitmetrics.New(), cfg.RateLimit.Limit, cfg.RateLimit.Window)

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:        log,
		Auth:          authhandler.New(auth, log),
		Cards:         cardhandler.New(cardSvc, log),
		Analytics:     analyticshandler.New(analyticsSvc, log),
		Authenticator: auth,
		Audits:        audits,
		RateLimit:     limiter.Limit,
	})

	srv := httpserver.New(cfg.Addr, router)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		log.Info("starting tapcard server", "addr", cfg.Addr)
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

	if err := g.Wait(); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
