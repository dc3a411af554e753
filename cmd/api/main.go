// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ourworld/internal/api"
	"github.com/yourusername/ourworld/internal/auth"
	"github.com/yourusername/ourworld/internal/config"
	"github.com/yourusername/ourworld/internal/logging"
	"github.com/yourusername/ourworld/internal/storage"
	"github.com/yourusername/ourworld/internal/store"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ourworld: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// データベースの準備（マイグレーションと初期データ）
	db, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := store.Seed(ctx, db); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}

	credentials := auth.NewCredentialStore(store.NewUsers(db))
	created, err := credentials.Bootstrap(ctx, cfg.DefaultPassword)
	if err != nil {
		return fmt.Errorf("failed to provision credential: %w", err)
	}
	if created {
		logger.Info(ctx, "provisioned initial credential", "username", auth.AccountUsername)
	}

	sessions, closeSessions, err := setupSessions(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSessions(); err != nil {
			logger.Warn(context.Background(), "failed to close session backend", "error", err)
		}
	}()

	assets, err := storage.NewLocal(cfg.PublicDir)
	if err != nil {
		// 静的ファイルが無くても API は動かす
		logger.Warn(ctx, "public dir unavailable, static files disabled", "dir", cfg.PublicDir, "error", err)
	} else {
		defer assets.Close()
		logger.Debug(ctx, "serving static files", "dir", assets.Dir())
	}

	throttle := auth.NewThrottle(cfg.LoginMaxAttempts, cfg.LoginWindow, cfg.LoginLockDuration)

	router := api.NewRouter(api.Deps{
		Policy:         auth.NewPolicy(cfg.EntryPage),
		Sessions:       sessions,
		Auth:           auth.NewHandler(credentials, sessions, throttle, cfg.CookieSecure()),
		Content:        store.NewContent(db),
		Assets:         assets,
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	// 未設定なら X-Forwarded-For を信頼せず、接続元のアドレスでログイン失敗を数える
	if err := router.SetTrustedProxies(cfg.TrustedProxyList()); err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// サーバーの起動
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "starting API server",
			"addr", srv.Addr,
			"mode", cfg.GinMode,
			"session_backend", cfg.SessionBackend,
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
