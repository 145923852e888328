package main // Entry point package

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/garage-api/internal/config"
	"github.com/iliyamo/garage-api/internal/database"
	"github.com/iliyamo/garage-api/internal/logger"
	"github.com/iliyamo/garage-api/internal/middleware"
	"github.com/iliyamo/garage-api/internal/queue"
	"github.com/iliyamo/garage-api/internal/router"
	"github.com/iliyamo/garage-api/internal/service"
	"github.com/iliyamo/garage-api/internal/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "garage-api:", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load() // .env is optional

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.Log, cfg.AppName)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Infow("starting", "config", cfg.String(), "version", cfg.Version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret, cfg.AccessTTL())
	if err != nil {
		return err
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if cfg.Redis.Enabled && rdb == nil {
		log.Warnw("redis unreachable, using in-process limiter and no cache", "addr", cfg.Redis.Addr)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	memLimiter := middleware.NewMemoryLimiter(cfg.LoginLimit.Max, cfg.LoginLimit.Window)
	var loginLimiter middleware.FixedWindowLimiter = memLimiter
	if rdb != nil {
		loginLimiter = middleware.NewRedisLimiter(rdb, cfg.LoginLimit, memLimiter, log)
	}
	var throttle *middleware.ClientThrottle
	sweepers := map[string]service.Sweeper{"login": memLimiter}
	if cfg.RateLimit.Enabled {
		throttle = middleware.NewClientThrottle(cfg.RateLimit)
		sweepers["throttle"] = throttle
	}
	sched, err := service.NewScheduler(cfg.RateLimit.SweepSpec, log, sweepers)
	if err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	publisher := service.NewPublisher(cfg.Queue, log)
	go publisher.Run(ctx)
	if cfg.Queue.Enabled {
		consumer := queue.NewConsumer(cfg.Queue, log)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Errorw("invoice consumer stopped", "error", err)
			}
		}()
	}

	e, err := router.New(router.Deps{
		Cfg:          cfg,
		Log:          log,
		DB:           db,
		Tokens:       tokens,
		Redis:        rdb,
		LoginLimiter: loginLimiter,
		Throttle:     throttle,
		Events:       publisher,
	})
	if err != nil {
		return err
	}
	e.Server.ReadHeaderTimeout = 10 * time.Second

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		log.Infow("listening", "addr", addr, "env", cfg.Env, "swagger", cfg.EnableSwagger)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Infow("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
