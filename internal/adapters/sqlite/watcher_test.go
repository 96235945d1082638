package sqlite_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/example/dealerops/internal/adapters/sqlite"
	"github.com/example/dealerops/internal/db"
	"github.com/example/dealerops/internal/ports/secondary"
)

// openFileDB opens a second handle on a shared file database; data_version
// only moves for commits made through another connection.
func openFileDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWatcher_PollAnnouncesForeignWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealerops.db")
	watched := openFileDB(t, path)
	if _, err := watched.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	writer := openFileDB(t, path)

	feed := &recordingFeed{}
	// the cron schedule is far enough out that only explicit polls run
	w := sqlite.NewWatcher(watched, feed, quietLogger(), "@every 1h")
	ctx := context.Background()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer w.Stop()

	changed, err := w.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if changed || len(feed.published) != 0 {
		t.Fatalf("expected no change before any write, got %v", feed.published)
	}

	if _, err := writer.Exec(`INSERT INTO dispatch (id, chassis_no) VALUES ('C1', 'C1')`); err != nil {
		t.Fatalf("foreign write failed: %v", err)
	}

	changed, err = w.Poll(ctx)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if !changed {
		t.Fatal("expected change after foreign write")
	}
	want := []string{
		secondary.CollectionDispatch,
		secondary.CollectionReallocation,
		secondary.CollectionSchedule,
		secondary.CollectionStockSheet,
	}
	if len(feed.published) != len(want) {
		t.Fatalf("announcements = %v, want %v", feed.published, want)
	}
	for i := range want {
		if feed.published[i] != want[i] {
			t.Errorf("announcement %d = %s, want %s", i, feed.published[i], want[i])
		}
	}

	changed, _ = w.Poll(ctx)
	if changed {
		t.Error("expected no change on second poll")
	}
}

func TestWatcher_PollBeforeStart(t *testing.T) {
	w := sqlite.NewWatcher(setupTestDB(t), &recordingFeed{}, quietLogger(), "@every 5s")
	if _, err := w.Poll(context.Background()); err == nil {
		t.Error("expected error polling an unstarted watcher")
	}
}

func TestWatcher_InvalidSchedule(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dealerops.db")
	w := sqlite.NewWatcher(openFileDB(t, path), &recordingFeed{}, quietLogger(), "not a schedule")
	if err := w.Start(context.Background()); err == nil {
		w.Stop()
		t.Fatal("expected error for invalid schedule")
	}
}
