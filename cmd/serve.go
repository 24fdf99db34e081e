package cmd

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
	"github.com/spf13/cobra"

	"github.com/abhisek/adaptiq/internal/api"
	"github.com/abhisek/adaptiq/internal/config"
	"github.com/abhisek/adaptiq/internal/logger"
	"github.com/abhisek/adaptiq/internal/reaper"
	"github.com/abhisek/adaptiq/internal/session"
	"github.com/abhisek/adaptiq/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the assessment HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTPAddr = addr
		}
		if p, _ := cmd.Flags().GetString("db"); p == "" && cfg.DBPath != "" {
			_ = cmd.Flags().Set("db", cfg.DBPath)
		}

		log, err := logger.New(logger.Options{
			Mode:            cfg.LogMode,
			Level:           cfg.LogLevel,
			HashIdentifiers: cfg.HashIdentifiers,
		})
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := st.Close(); err != nil {
				log.Error("close store", "error", err)
			}
		}()

		banks, err := loadBanks(ctx, st)
		if err != nil {
			return err
		}
		log.Info("item bank loaded", "version", banks.Current().Version(), "items", banks.Current().Len())

		opts := session.Options{
			Banks:  banks,
			Events: st.Events(),
			Logger: log,
			Hints:  newHintGenerator(ctx, st.Events(), log),
		}
		switch cfg.SessionBackend {
		case config.BackendMemory:
			opts.Exposure = session.NewMemoryExposure(cfg.ExposureWindow)
		case config.BackendSQLite:
			opts.Store = st.Sessions()
			opts.Exposure = st.Exposure(cfg.ExposureWindow)
		case config.BackendRedis:
			ropts := store.RedisOptions{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				Prefix:   cfg.Redis.Prefix,
				TTL:      cfg.Redis.TTL,
			}
			rdb, err := store.NewRedisClient(ctx, ropts)
			if err != nil {
				return err
			}
			defer rdb.Close()
			opts.Store = store.NewRedisSessionStore(rdb, ropts)
			opts.Exposure = store.NewRedisExposure(rdb, ropts, cfg.ExposureWindow)
		}
		log.Info("session backend selected", "backend", cfg.SessionBackend)

		svc, err := session.NewService(cfg.Engine, opts)
		if err != nil {
			return fmt.Errorf("build session service: %w", err)
		}

		reaperDone := reaper.New(svc, cfg.IdleTimeout, cfg.ReapInterval, log).Start(ctx)

		srv := &http.Server{
			Addr: cfg.HTTPAddr,
			Handler: api.NewServer(api.Options{
				Service:     svc,
				Banks:       banks,
				Auth:        api.NewAuth(cfg.JWTSecret, cfg.JWTIssuer),
				Logger:      log,
				CORSOrigins: cfg.CORSOrigins,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("http server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
		case <-ctx.Done():
		}

		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
		}
		stop()
		<-reaperDone
		return nil
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides ADAPTIQ_HTTP_ADDR)")
}
