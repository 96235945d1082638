// Package wire provides dependency injection for the dealerops CLI.
// Shared infrastructure is created once, lazily; dashboard and stock-sheet
// sessions are created fresh per caller because each owns its own overlay.
package wire

import (
	"context"
	"database/sql"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	cliadapter "github.com/example/dealerops/internal/adapters/cli"
	"github.com/example/dealerops/internal/adapters/email"
	"github.com/example/dealerops/internal/adapters/excel"
	"github.com/example/dealerops/internal/adapters/feed"
	"github.com/example/dealerops/internal/adapters/sqlite"
	"github.com/example/dealerops/internal/app"
	"github.com/example/dealerops/internal/config"
	"github.com/example/dealerops/internal/db"
	"github.com/example/dealerops/internal/ports/primary"
	"github.com/example/dealerops/internal/ports/secondary"
)

var (
	baseDir string

	cfg        *config.Config
	logger     *logrus.Logger
	database   *sql.DB
	changeFeed secondary.ChangeFeed
	store      *sqlite.DocumentStore
	logWriter  secondary.LogWriter
	logService primary.LogService
	notifier   *email.Notifier
	once       sync.Once
)

// SetBaseDir selects the directory holding .dealerops/ and .env.
// Must be called before any other function in this package.
func SetBaseDir(dir string) {
	baseDir = dir
}

// BaseDir returns the configured base directory, defaulting to the home directory.
func BaseDir() string {
	if baseDir != "" {
		return baseDir
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the shared structured logger.
func Logger() *logrus.Logger {
	once.Do(initServices)
	return logger
}

// Database returns the shared SQLite connection.
func Database() *sql.DB {
	once.Do(initServices)
	return database
}

// Store returns the SQLite document store.
func Store() *sqlite.DocumentStore {
	once.Do(initServices)
	return store
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

// Notifier returns the EmailJS notifier, or nil when email is not configured.
func Notifier() *email.Notifier {
	once.Do(initServices)
	return notifier
}

// NewDashboardSession returns a fresh dashboard session with its own overlay.
// Exports are written relative to the working directory.
func NewDashboardSession() *app.DashboardServiceImpl {
	once.Do(initServices)

	var n secondary.Notifier
	if notifier != nil {
		n = notifier
	}
	exporters := map[string]secondary.Exporter{
		app.FormatXLSX: excel.NewExporter("."),
		app.FormatCSV:  excel.NewCSVExporter("."),
	}
	return app.NewDashboardService(store, n, exporters, logWriter, logger)
}

// NewStockSheetSession returns a fresh stock-sheet session with its own drafts.
func NewStockSheetSession() *app.StockSheetServiceImpl {
	once.Do(initServices)
	return app.NewStockSheetService(store, logWriter, logger, app.RealScheduler{}, cfg.Debounce())
}

// NewWatcher returns a watcher announcing writes made by other processes.
func NewWatcher() *sqlite.Watcher {
	once.Do(initServices)
	return sqlite.NewWatcher(database, changeFeed, logger, cfg.PollSchedule)
}

// Shutdown releases the change feed and the database connection.
func Shutdown() {
	if changeFeed != nil {
		if err := changeFeed.Close(); err != nil {
			logger.WithError(err).Warn("failed to close change feed")
		}
	}
	_ = db.Close()
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	dir := BaseDir()

	logger = config.NewLogger(config.DefaultLogLevel, os.Stderr)
	if err := config.LoadEnv(dir); err != nil {
		logger.WithError(err).Warn("ignoring .env")
	}

	loaded, err := config.LoadOrDefault(dir)
	if err != nil {
		logger.WithError(err).Fatal("failed to load config")
	}
	loaded.ApplyEnv()
	cfg = loaded
	logger = config.NewLogger(cfg.LogLevel, os.Stderr)

	db.SetPath(cfg.ResolveDatabasePath(dir))
	database, err = db.GetDB()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize database")
	}

	changeFeed = newChangeFeed()

	auditRepo := sqlite.NewAuditLogRepository(database)
	store = sqlite.NewDocumentStore(database, changeFeed, logger)
	logWriter = sqlite.NewLogWriterAdapter(auditRepo, cfg.Actor)
	logService = app.NewLogService(auditRepo)

	if cfg.EmailJS.Enabled() {
		notifier = email.NewNotifier(cfg.EmailJS, nil)
	}
}

// newChangeFeed uses Redis when configured and reachable, the in-process feed otherwise.
func newChangeFeed() secondary.ChangeFeed {
	if cfg.RedisURL == "" {
		return feed.NewLocalFeed()
	}
	f, err := feed.NewRedisFeed(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		config.LogError(logger, "wire", "newChangeFeed", "redis unavailable, using in-process feed", nil, err)
		return feed.NewLocalFeed()
	}
	return f
}

// DashboardAdapter returns a new DashboardAdapter over svc writing to stdout.
func DashboardAdapter(svc primary.DashboardService) *cliadapter.DashboardAdapter {
	return DashboardAdapterWithOutput(svc, os.Stdout)
}

// DashboardAdapterWithOutput returns a new DashboardAdapter writing to the given output.
func DashboardAdapterWithOutput(svc primary.DashboardService, out io.Writer) *cliadapter.DashboardAdapter {
	return cliadapter.NewDashboardAdapter(svc, out)
}

// StockSheetAdapter returns a new StockSheetAdapter over svc writing to stdout.
func StockSheetAdapter(svc primary.StockSheetService) *cliadapter.StockSheetAdapter {
	return cliadapter.NewStockSheetAdapter(svc, os.Stdout)
}

// LogAdapter returns a new LogAdapter writing to stdout.
func LogAdapter() *cliadapter.LogAdapter {
	return cliadapter.NewLogAdapter(LogService(), os.Stdout)
}
