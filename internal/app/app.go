package app

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	neurostamp "github.com/ypk/neurostamp"
	"github.com/ypk/neurostamp/internal/cleanup"
	"github.com/ypk/neurostamp/internal/config"
	"github.com/ypk/neurostamp/internal/db"
	"github.com/ypk/neurostamp/internal/handler"
	"github.com/ypk/neurostamp/internal/keystore"
)

func Run(ctx context.Context, cfg *config.Config) error {
	for _, dir := range []string{cfg.DataDir, filepath.Join(cfg.DataDir, "stamped")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database, neurostamp.MigrationFS); err != nil {
		return err
	}
	slog.Info("database ready")

	keyFile := cfg.KeyFile
	if keyFile == "" {
		keyFile = filepath.Join(cfg.DataDir, "secret.key")
	}
	keys, err := keystore.Open(keyFile)
	if err != nil {
		return err
	}
	slog.Info("keystore ready", "file", keyFile)

	cleaner := &cleanup.Cleaner{
		DB:        database,
		DataDir:   cfg.DataDir,
		Interval:  time.Duration(cfg.CleanupIntervalMins) * time.Minute,
		Retention: time.Duration(cfg.RetentionHours) * time.Hour,
	}
	cleaner.Start(ctx)
	defer cleaner.Stop()

	templateFS, err := fs.Sub(neurostamp.TemplateFS, "templates")
	if err != nil {
		return err
	}
	staticFS, err := fs.Sub(neurostamp.StaticFS, "static")
	if err != nil {
		return err
	}

	// Rate limiter for auth endpoints: 5 requests/minute, burst of 5.
	authRL := handler.NewRateLimiter(5.0/60.0, 5)
	defer authRL.Stop()

	h := handler.New(database, cfg, keys, templateFS)
	router := h.Routes(staticFS, authRL)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		srv.Shutdown(context.Background())
	}()

	slog.Info("server starting", "addr", cfg.ListenAddr, "base_url", cfg.BaseURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
