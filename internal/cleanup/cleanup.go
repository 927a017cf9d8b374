// Package cleanup sweeps stale files out of the data directory: stamped
// outputs past their retention window and expired sessions.
package cleanup

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ypk/neurostamp/internal/db"
)

type Cleaner struct {
	DB        *sql.DB
	DataDir   string
	Interval  time.Duration
	Retention time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func (c *Cleaner) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.loop(ctx)
	slog.Info("cleanup scheduler started", "interval", c.Interval, "retention", c.Retention)
}

func (c *Cleaner) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
	}
	slog.Info("cleanup scheduler stopped")
}

func (c *Cleaner) loop(ctx context.Context) {
	defer close(c.done)

	c.runOnce()

	ticker := time.NewTicker(c.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runOnce()
		}
	}
}

func (c *Cleaner) runOnce() {
	if err := db.DeleteExpiredSessions(c.DB); err != nil {
		slog.Error("cleanup: delete expired sessions", "error", err)
	}

	dir := filepath.Join(c.DataDir, "stamped")
	entries, err := os.ReadDir(dir)
	if err != nil {
		slog.Error("cleanup: read stamped dir", "dir", dir, "error", err)
		return
	}
	cutoff := time.Now().Add(-c.Retention)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			slog.Warn("cleanup: remove stamped file", "file", path, "error", err)
		} else {
			slog.Info("cleanup: removed stamped file", "file", e.Name())
		}
	}
}
