package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trian/landing/backend/wishes-service/handlers"
	"github.com/trian/landing/backend/wishes-service/internal/backup"
	"github.com/trian/landing/backend/wishes-service/internal/config"
	"github.com/trian/landing/backend/wishes-service/internal/live"
	"github.com/trian/landing/backend/wishes-service/internal/moderation"
	"github.com/trian/landing/backend/wishes-service/internal/oidc"
	"github.com/trian/landing/backend/wishes-service/internal/tokens"
	"github.com/trian/landing/backend/wishes-service/internal/wish/handler"
	"github.com/trian/landing/backend/wishes-service/internal/wish/repository"
	"github.com/trian/landing/backend/wishes-service/internal/wish/service"
	"github.com/trian/landing/backend/wishes-service/pkg/logger"
	"github.com/trian/landing/backend/wishes-service/pkg/metrics"
	"github.com/trian/landing/backend/wishes-service/pkg/middleware"
)

var startTime = time.Now()

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Infof("config loaded: store=%s mongo=%v redis=%v admin_guard=%v backup=%v",
		cfg.Store.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.AdminGuarded(), cfg.BackupEnabled())

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checks := map[string]handlers.Check{}

	redisClient := repository.NewRedisClient(cfg)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("redis ping failed (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		} else {
			logger.Infof("connected to redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	repo, closeRepo, err := repository.Open(ctx, cfg, redisClient)
	if err != nil {
		logger.Fatalf("failed to open %s store: %v", cfg.Store.Backend, err)
	}
	defer closeRepo()

	loc, _ := time.LoadLocation(cfg.Wish.Timezone)

	hub := live.NewHub()
	opts := service.Options{
		Title:        cfg.Wish.Title,
		Location:     loc,
		Lock:         cfg.Store.Lock,
		StrictWrites: cfg.Store.StrictWrites,
	}
	if cfg.Live.Enabled {
		go hub.Run(ctx)
		opts.Notifier = hub
	}
	mod, err := moderation.New(cfg.Moderation.Words, cfg.Moderation.Mask, cfg.Moderation.FoldDiacritics)
	if err != nil {
		logger.Fatalf("failed to build moderation list: %v", err)
	}
	if mod != nil {
		opts.Censor = mod
		logger.Infof("moderation enabled with %d blocked words", len(cfg.Moderation.Words))
	}
	svc := service.New(repo, opts)
	checks["store"] = svc.Ready
	logger.Infof("wishes stored via %s backend (strict_writes=%v lock=%v)", svc.Backend(), cfg.Store.StrictWrites, cfg.Store.Lock)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS(), metrics.Middleware())

	handlers.RegisterHealth(r, startTime, checks)
	handlers.RegisterSwagger(r, cfg.Server.PublicAPIURL)
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	var hopts []handler.Option
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			hopts = append(hopts, handler.WithWriteMiddleware(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win)))
		} else {
			hopts = append(hopts, handler.WithWriteMiddleware(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)))
		}
	}
	admin := adminGuard(ctx, cfg, tokens.NewRevocations(redisClient))
	hopts = append(hopts, handler.WithAdminMiddleware(admin...))
	if cfg.Live.Enabled {
		hopts = append(hopts, handler.WithLive(live.Handler(hub)))
	}

	api := r.Group("/api")
	handler.NewHandler(svc, hopts...).Register(api)

	if cfg.BackupEnabled() {
		objects, err := backup.NewMinIOStorage(ctx, cfg.Backup)
		if err != nil {
			logger.Warnf("backups disabled: %v", err)
		} else {
			bk := backup.NewService(svc, objects)
			backup.RegisterRoutes(api, bk, admin...)
			go bk.Schedule(ctx, cfg.Backup.Interval)
			logger.Infof("backups to bucket %s every %s", cfg.Backup.Bucket, cfg.Backup.Interval)
		}
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("wishes service listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
		os.Exit(1)
	}
}

// adminGuard builds the middleware protecting destructive routes. With no
// secret and no issuer configured the routes stay open.
func adminGuard(ctx context.Context, cfg *config.Config, rev *tokens.Revocations) []gin.HandlerFunc {
	switch {
	case cfg.Admin.OIDCIssuer != "":
		ver, err := oidc.NewVerifier(ctx, cfg.Admin.OIDCIssuer, cfg.Admin.OIDCClientID)
		if err != nil {
			logger.Fatalf("failed to initialize OIDC verifier: %v", err)
		}
		return middleware.AdminGuard(tokens.WithRevocations(ver, rev))
	case cfg.Admin.JWTSecret != "":
		return middleware.AdminGuard(tokens.WithRevocations(tokens.NewHMACVerifier(cfg.Admin.JWTSecret), rev))
	}
	logger.Warnf("admin guard disabled: DELETE /api/wishes/:id is open to anyone")
	return nil
}
