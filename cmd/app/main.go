package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kushklicker/internal/bot"
	"kushklicker/internal/cache"
	"kushklicker/internal/config"
	"kushklicker/internal/db"
	"kushklicker/internal/game"
	httpServer "kushklicker/internal/http"
	"kushklicker/internal/http/handlers"
	"kushklicker/internal/http/middleware"
	"kushklicker/internal/jobs"
	"kushklicker/internal/logger"
	"kushklicker/internal/migrations"
	"kushklicker/internal/repository"
	"kushklicker/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store repository.Store
	if cfg.UsePostgres() {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connect failed", "error", err)
		}
		defer pool.Close()
		if err := migrations.Apply(ctx, pool); err != nil {
			logger.Fatal("migrations failed", "error", err)
		}
		store = repository.NewPostgresStore(pool)
		logger.Info("using postgres store")
	} else {
		store = repository.NewMemoryStore()
		logger.Warn("DATABASE_URL not set, using in-memory store")
	}

	health := handlers.NewHealthHandler(store, cfg.AppVersion)
	opts := game.Options{EnforceUnlock: cfg.EnforceUnlockRequirement}

	rdb, err := cache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		// the game works without Redis, only slower leaderboards and local rate limits
		logger.Warn("redis unavailable", "error", err)
	}
	if rdb != nil {
		defer rdb.Close()
		middleware.UseRedis(rdb)
		opts.Index = cache.NewLeaderboard(rdb)
		health.WithCheck("redis", handlers.PingFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	engine := game.NewEngine(store, opts)
	if err := engine.SeedCatalog(ctx); err != nil {
		logger.Fatal("seed catalog failed", "error", err)
	}
	if opts.Index != nil {
		if n, err := engine.RebuildIndex(ctx); err != nil {
			logger.Warn("leaderboard index rebuild failed", "error", err)
		} else {
			logger.Info("leaderboard index rebuilt", "players", n)
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	hub := ws.NewHub()
	httpServer.RegisterRoutes(r, handlers.NewHandler(engine), health, hub, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	var scheduler *jobs.Scheduler
	if opts.Index != nil {
		scheduler = jobs.NewScheduler(engine, cfg.LeaderboardResync)
		if err := scheduler.Start(ctx); err != nil {
			logger.Error("scheduler not started", "error", err)
			scheduler = nil
		}
	}

	var tg *bot.TelegramBot
	if cfg.TelegramBotToken != "" {
		tg, err = bot.NewTelegramBot(cfg.TelegramBotToken, engine, cfg.GameURL)
		if err != nil {
			logger.Error("telegram bot not started", "error", err)
		} else {
			go tg.Start()
		}
	}

	var dc *bot.DiscordBot
	if cfg.DiscordBotToken != "" {
		dc, err = bot.NewDiscordBot(cfg.DiscordBotToken, engine, cfg.GameURL)
		if err == nil {
			err = dc.Start()
		}
		if err != nil {
			logger.Error("discord bot not started", "error", err)
			dc = nil
		}
	}

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	if tg != nil {
		tg.Stop()
	}
	if dc != nil {
		dc.Stop()
	}
	if scheduler != nil {
		scheduler.Stop()
	}

	logger.Info("server exited")
}
