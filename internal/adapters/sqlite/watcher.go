package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/ports/secondary"
)

// watchedCollections are announced when another process changes the database.
var watchedCollections = []string{
	secondary.CollectionDispatch,
	secondary.CollectionReallocation,
	secondary.CollectionSchedule,
	secondary.CollectionStockSheet,
}

// Watcher turns writes made by other processes into change-feed announcements.
// It polls PRAGMA data_version on a dedicated connection; the value moves only
// when a different connection commits.
type Watcher struct {
	db       *sql.DB
	feed     secondary.ChangeFeed
	logger   *logrus.Logger
	schedule string

	mu      sync.Mutex
	conn    *sql.Conn
	last    int64
	cron    *cron.Cron
	running bool
}

// NewWatcher creates a watcher polling on the given cron schedule (e.g. "@every 5s").
func NewWatcher(db *sql.DB, feed secondary.ChangeFeed, logger *logrus.Logger, schedule string) *Watcher {
	return &Watcher{db: db, feed: feed, logger: logger, schedule: schedule}
}

// Start takes a connection, records the current data version and begins polling.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	conn, err := w.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open watcher connection: %w", err)
	}
	var version int64
	if err := conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&version); err != nil {
		conn.Close()
		return fmt.Errorf("failed to read data version: %w", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(w.schedule, func() {
		if _, err := w.Poll(context.Background()); err != nil {
			config.LogError(w.logger, "sqlite", "Watcher.Poll", "data version poll failed", nil, err)
		}
	}); err != nil {
		conn.Close()
		return fmt.Errorf("unable to schedule watcher %q: %w", w.schedule, err)
	}

	w.conn = conn
	w.last = version
	w.cron = c
	w.running = true
	c.Start()
	w.logger.WithField("schedule", w.schedule).Info("database watcher started")
	return nil
}

// Poll checks the data version once and announces every collection when it moved.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	w.mu.Lock()
	if w.conn == nil {
		w.mu.Unlock()
		return false, fmt.Errorf("watcher not started")
	}
	var version int64
	if err := w.conn.QueryRowContext(ctx, "PRAGMA data_version").Scan(&version); err != nil {
		w.mu.Unlock()
		return false, fmt.Errorf("failed to read data version: %w", err)
	}
	changed := version != w.last
	w.last = version
	w.mu.Unlock()

	if !changed {
		return false, nil
	}
	for _, c := range watchedCollections {
		if err := w.feed.Publish(ctx, c); err != nil {
			return true, fmt.Errorf("failed to announce %s: %w", c, err)
		}
	}
	return true, nil
}

// Stop halts polling, waits for a running poll and releases the connection.
func (w *Watcher) Stop() {
	w.mu.Lock()
	c := w.cron
	w.running = false
	w.cron = nil
	w.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
