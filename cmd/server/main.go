package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/sync/errgroup"

	"querygate/internal/app"
	"querygate/internal/config"
	internaldb "querygate/internal/db"
	"querygate/internal/db/repository"
	"querygate/internal/domain"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file (if present), then the environment.
	if err := config.LoadDotEnv(".env"); err != nil {
		slog.Warn("could not load .env", "error", err)
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	for _, w := range cfg.Warnings {
		logger.Warn(w)
	}

	// writeDB: single-connection pool for serialized writes (WAL + txlock=immediate).
	// readDB:  concurrent pool for reads.
	writeDB, readDB, err := internaldb.OpenSQLitePair(cfg.DBPath, 4)
	if err != nil {
		return err
	}
	defer writeDB.Close()
	defer readDB.Close()

	if err := internaldb.RunMigrations(writeDB); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.BootstrapAdminEmail != "" {
		if err := bootstrapAdmin(ctx, writeDB, cfg.BootstrapAdminEmail, logger); err != nil {
			return err
		}
	}

	a := app.New(app.Deps{
		Cfg:     cfg,
		WriteDB: writeDB,
		ReadDB:  readDB,
		Logger:  logger,
	})

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http api listening", "addr", cfg.ListenAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// bootstrapAdmin creates the initial admin user when the configured email is
// not yet registered. Idempotent across restarts.
func bootstrapAdmin(ctx context.Context, writeDB *sql.DB, email string, logger *slog.Logger) error {
	users := repository.NewUserRepo(writeDB)

	if _, err := users.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.As(err, new(*domain.NotFoundError)) {
		return fmt.Errorf("bootstrap admin lookup: %w", err)
	}

	admin, err := domain.NewUser(email, "", true, time.Now())
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("bootstrap admin create: %w", err)
	}
	logger.Info("bootstrapped admin user", "email", admin.Email, "id", admin.ID)
	return nil
}
