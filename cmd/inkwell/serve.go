// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/inkwell/inkwell/internal/auth"
	authpg "github.com/inkwell/inkwell/internal/auth/postgres"
	"github.com/inkwell/inkwell/internal/blob"
	"github.com/inkwell/inkwell/internal/config"
	"github.com/inkwell/inkwell/internal/logging"
	"github.com/inkwell/inkwell/internal/observability"
	"github.com/inkwell/inkwell/internal/store"
)

const (
	shutdownTimeout = 10 * time.Second
	pruneInterval   = time.Hour
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication server",
		Long: `Start the HTTP authentication server in the configured token mode
(jwt or opaque), along with the observability endpoint.`,
		RunE: runServe,
	}

	// Flag defaults mirror config.Default so unset flags never shadow
	// file or environment values.
	def := config.Default()
	cmd.Flags().String("mode", def.Mode, "token mode (jwt or opaque)")
	cmd.Flags().String("http.addr", def.HTTP.Addr, "HTTP listen address")
	cmd.Flags().String("observability.addr", def.Observability.Addr, "metrics/health listen address")
	cmd.Flags().String("database.url", def.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("log.level", def.Log.Level, "log level (debug, info, warn, error)")
	cmd.Flags().String("log.format", def.Log.Format, "log format (text or json)")
	cmd.Flags().Bool("auto-migrate", false, "run pending migrations before serving")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault(logging.Options{
		Service: "inkwell",
		Version: version,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Output:  os.Stderr,
	})
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if autoMigrate, _ := cmd.Flags().GetBool("auto-migrate"); autoMigrate {
		if err := migrateUp(cfg.Database.URL); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	images, err := newBlobStore(ctx, cfg)
	if err != nil {
		return err
	}

	core, err := auth.NewServiceWithLogger(
		authpg.NewAccountRepository(pool), auth.NewArgon2idHasher(), images, logger)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	prune, err := mountMode(cfg, core, pool, logger, mux)
	if err != nil {
		return err
	}
	if cfg.Blob.Backend == "fs" {
		mux.Handle("GET /blobs/", http.StripPrefix("/blobs/",
			http.FileServer(http.Dir(cfg.Blob.FS.Dir))))
	}

	obs := observability.NewServer(cfg.Observability.Addr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrs, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = obs.Stop(stopCtx)
	}()

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErrs := make(chan error, 1)
	go func() {
		logger.Info("http server started", "addr", cfg.HTTP.Addr, "mode", cfg.Mode)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			srvErrs <- serveErr
		}
		close(srvErrs)
	}()

	if prune != nil {
		go pruneLoop(ctx, prune, logger)
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-srvErrs:
		if err != nil {
			return oops.Code("SERVER_FAILED").Wrap(err)
		}
	case err := <-obsErrs:
		if err != nil {
			return oops.Code("OBSERVABILITY_FAILED").Wrap(err)
		}
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		return oops.Code("SHUTDOWN_FAILED").Wrap(err)
	}
	logger.Info("http server stopped")
	return nil
}

// mountMode builds the mode-specific service stack, mounts its routes, and
// returns the periodic prune function for that mode.
func mountMode(cfg config.Config, core *auth.Service, pool *pgxpool.Pool, logger *slog.Logger, mux *http.ServeMux) (func(context.Context) (int64, error), error) {
	switch cfg.Mode {
	case config.ModeJWT:
		denylist := authpg.NewDenylist(pool)
		codec, err := auth.NewTokenCodec(auth.CodecConfig{
			SigningKey: []byte(cfg.JWT.SigningKey),
			Issuer:     cfg.JWT.Issuer,
			AccessTTL:  cfg.JWT.AccessTTL,
			RefreshTTL: cfg.JWT.RefreshTTL,
		}, denylist)
		if err != nil {
			return nil, err
		}
		svc, err := auth.NewJWTServiceWithLogger(core, codec, logger)
		if err != nil {
			return nil, err
		}
		handler, err := auth.NewJWTHandler(core, svc, logger)
		if err != nil {
			return nil, err
		}
		handler.Routes(mux)
		return denylist.Prune, nil

	default:
		tokens := authpg.NewTokenRepository(pool)
		svc, err := auth.NewSessionServiceWithLogger(core, tokens,
			auth.SessionConfig{MaxAge: cfg.Session.MaxAge}, logger)
		if err != nil {
			return nil, err
		}
		handler, err := auth.NewSessionHandler(core, svc, logger)
		if err != nil {
			return nil, err
		}
		handler.Routes(mux)
		if cfg.Session.MaxAge == 0 {
			return nil, nil
		}
		return svc.PruneExpired, nil
	}
}

func pruneLoop(ctx context.Context, prune func(context.Context) (int64, error), logger *slog.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := prune(ctx)
			if err != nil {
				logger.Warn("prune failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("pruned expired tokens", "count", n)
			}
		}
	}
}

// newBlobStore builds the configured blob backend.
func newBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.Blob.Backend {
	case "s3":
		return blob.NewS3Store(ctx, blob.S3Config{
			Region:    cfg.Blob.S3.Region,
			Endpoint:  cfg.Blob.S3.Endpoint,
			Bucket:    cfg.Blob.S3.Bucket,
			AccessKey: cfg.Blob.S3.AccessKey,
			SecretKey: cfg.Blob.S3.SecretKey,
		})
	default:
		return blob.NewFSStore(cfg.Blob.FS.Dir, cfg.Blob.FS.BaseURL)
	}
}
