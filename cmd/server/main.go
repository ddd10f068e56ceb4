package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/tierlist/config"
	"github.com/d60-Lab/tierlist/internal/api/handler"
	"github.com/d60-Lab/tierlist/internal/api/router"
	"github.com/d60-Lab/tierlist/internal/cache"
	"github.com/d60-Lab/tierlist/internal/model"
	"github.com/d60-Lab/tierlist/internal/push"
	"github.com/d60-Lab/tierlist/internal/repository"
	"github.com/d60-Lab/tierlist/internal/service"
	"github.com/d60-Lab/tierlist/internal/session"
	"github.com/d60-Lab/tierlist/internal/tracing"
	"github.com/d60-Lab/tierlist/pkg/database"
	"github.com/d60-Lab/tierlist/pkg/logger"
)

// @title Tierlist API
// @version 1.0
// @description Tier-list voting: items, rooms, votes, leaderboard and push reminders.
// @BasePath /
func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			TracesSampleRate: cfg.Sentry.SampleRate,
			AttachStacktrace: true,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, model.All()...); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()
	}

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)
	items := repository.NewItemRepository(db)
	votes := repository.NewVoteRepository(db)
	subs := repository.NewPushSubscriptionRepository(db)

	var store session.Store
	if rdb != nil {
		store = session.NewRedisStore(rdb)
		logger.Info("using redis session store")
	} else {
		store = session.NewDBStore(repository.NewSessionRepository(db))
		logger.Info("using database session store")
	}
	sessions := session.NewManager(store, cfg.Session.CookieName, cfg.Session.TTL, cfg.Session.Domain, cfg.Session.Secure)
	stopCleanup := sessions.StartCleanup(time.Hour)

	var sender push.Sender
	if cfg.Push.Enabled() {
		sender = push.NewWebPushSender(cfg.Push)
	} else {
		logger.Warn("push notifications disabled: VAPID keys not configured")
	}
	notifier := service.NewNotifier(subs, items, votes, sender, cfg.Push)
	stopNotifier := notifier.Start()

	scopes := service.NewScopeResolver(rooms)
	leaderboard := service.NewLeaderboardService(
		repository.NewLeaderboardRepository(db),
		scopes,
		cache.NewLeaderboardCache(rdb, cfg.Leaderboard.CacheTTL),
	)

	h := handler.New(handler.Deps{
		Auth:            service.NewAuthService(users),
		OAuth:           service.NewOAuthService(users, cfg.OAuth),
		Rooms:           service.NewRoomService(rooms, leaderboard),
		Items:           service.NewItemService(items, scopes, leaderboard, notifier),
		Votes:           service.NewVoteService(votes, items, scopes, leaderboard),
		Leaderboard:     leaderboard,
		Push:            service.NewPushService(subs, cfg.Push),
		Sessions:        sessions,
		DB:              db,
		Redis:           rdb,
		OAuthSuccessURL: cfg.OAuth.SuccessURL,
	})

	engine, err := router.New(cfg, h, sessions)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("tierlist listening", zap.String("addr", srv.Addr), zap.Bool("push", notifier.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := stopNotifier(shutdownCtx); err != nil {
		logger.Warn("notifier did not stop in time", zap.Error(err))
	}
	_ = stopCleanup(shutdownCtx)
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracing shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
