package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/golf-scoreboard/internal/api"
	"github.com/stitts-dev/golf-scoreboard/internal/providers"
	"github.com/stitts-dev/golf-scoreboard/internal/services"
	"github.com/stitts-dev/golf-scoreboard/pkg/config"
	"github.com/stitts-dev/golf-scoreboard/pkg/database"
	"github.com/stitts-dev/golf-scoreboard/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.IsDevelopment())
	entry := logger.WithService("golf-scoreboard")

	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, closeTokens, err := newTokenStore(cfg)
	if err != nil {
		entry.Fatalf("Failed to open token store: %v", err)
	}
	defer closeTokens()

	client := providers.NewScoreboardClient(providers.ClientOptions{
		BaseURL:          cfg.APIBaseURL,
		Timeout:          cfg.APITimeoutDuration(),
		RateLimit:        cfg.APIRateLimit,
		BreakerThreshold: cfg.CircuitBreakerThreshold,
		BreakerTimeout:   cfg.CircuitBreakerTimeoutDuration(),
	}, log)

	session := services.NewSessionStore(client, tokens, log)
	leaderboard := services.NewLeaderboardCache(client, session, cfg.RefreshIntervalDuration(), log)

	router, err := api.NewRouter(api.Dependencies{
		Session:         session,
		Leaderboard:     leaderboard,
		API:             client,
		RefreshInterval: cfg.RefreshIntervalDuration(),
		Logger:          log,
	})
	if err != nil {
		entry.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2*cfg.APITimeoutDuration() + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		entry.WithFields(logrus.Fields{
			"addr":        srv.Addr,
			"api":         client.BaseURL(),
			"token_store": tokens.Name(),
		}).Info("Starting scoreboard")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			entry.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Restore the session in the background; pages show a loading view until it is done
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.APITimeoutDuration())
		defer cancel()
		session.Initialize(ctx)
		entry.WithField("session", session.State().String()).Info("Session initialized")
	}()

	go func() {
		<-session.Ready()
		if err := leaderboard.Start(); err != nil {
			entry.Errorf("Failed to start leaderboard polling: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	entry.Info("Shutting down scoreboard...")

	leaderboard.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		entry.Errorf("Server forced to shutdown: %v", err)
	}

	entry.Info("Scoreboard exited")
}

// newTokenStore opens the configured token persistence and returns a close func
func newTokenStore(cfg *config.Config) (services.TokenStore, func(), error) {
	switch cfg.TokenStore {
	case "redis":
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return services.NewRedisTokenStore(client, cfg.TokenKey), func() { _ = client.Close() }, nil

	case "database":
		db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
		if err != nil {
			return nil, nil, err
		}
		store, err := services.NewDBTokenStore(db.DB, cfg.TokenKey)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, func() { _ = db.Close() }, nil

	default:
		return services.NewFileTokenStore(cfg.TokenFile), func() {}, nil
	}
}
