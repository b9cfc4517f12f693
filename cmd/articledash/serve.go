package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"articledash/internal/controller"
	"articledash/internal/server"
	"articledash/internal/session"
	"articledash/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	listenAddr string
	redisAddr  string
	badgerPath string
	sessionTTL time.Duration
)

const badgerGCInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		client := newClient()
		reg := session.NewRegistry(st, func() *controller.Controller {
			return newController(client, logger)
		}, session.DefaultIdleTimeout, logger.Named("session"))
		if err := reg.Start(); err != nil {
			return err
		}

		if cfg.InsecureSecret() {
			logger.Warn("SESSION_SECRET not set, using the development secret")
		}
		srv, err := server.NewServer(reg, server.Config{
			SessionSecret: cfg.SessionSecret,
			CookieMaxAge:  sessionTTL,
			CanImport:     true,
		}, logger.Named("http"))
		if err != nil {
			return err
		}

		go func() {
			if err := srv.Start(listenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Web server failed", zap.Error(err))
				stop()
			}
		}()
		logger.Info("Dashboard running", zap.String("api", apiURL))

		// Block until shutdown
		<-ctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			logger.Error("Web server shutdown", zap.Error(err))
		}
		reg.Stop(shutdownCtx)

		logger.Info("Goodbye!")
		return nil
	},
}

// openStore picks the session store: Redis (+ Badger drafts) when
// configured, otherwise an in-process map.
func openStore(ctx context.Context) (store.Store, func(), error) {
	if redisAddr == "" {
		if badgerPath != "" {
			logger.Warn("--badger needs --redis; keeping sessions in memory")
		}
		logger.Info("Session store: memory", zap.Duration("ttl", sessionTTL))
		return store.NewMemoryStore(sessionTTL), func() {}, nil
	}

	hs, err := store.NewHybridStore(redisAddr, badgerPath, sessionTTL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Session store: redis",
		zap.String("redis", redisAddr),
		zap.String("badger", badgerPath),
		zap.Duration("ttl", sessionTTL))

	if badgerPath != "" {
		go func() {
			ticker := time.NewTicker(badgerGCInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := hs.RunGC(); err != nil {
						logger.Warn("Badger GC failed", zap.Error(err))
					}
				}
			}
		}()
	}
	return hs, hs.Close, nil
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from LISTEN_ADDR)")
	serveCmd.Flags().StringVar(&redisAddr, "redis", "", "Redis address for session snapshots (default from REDIS_ADDR)")
	serveCmd.Flags().StringVar(&badgerPath, "badger", "", "Badger directory for form drafts (default from BADGER_PATH)")
	serveCmd.Flags().DurationVar(&sessionTTL, "session-ttl", 0, "How long idle sessions are kept (default from SESSION_TTL)")

	serveCmd.PreRun = func(cmd *cobra.Command, args []string) {
		if listenAddr == "" {
			listenAddr = cfg.ListenAddr
		}
		if redisAddr == "" {
			redisAddr = cfg.RedisAddr
		}
		if badgerPath == "" {
			badgerPath = cfg.BadgerPath
		}
		if sessionTTL <= 0 {
			sessionTTL = cfg.SessionTTL
		}
	}
}
