// Package internal provides the App struct that wires all components of the
// to-do list together and initializes the CLI layer.
package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/valter-silva-au/todo/internal/cli"
	"github.com/valter-silva-au/todo/internal/core"
	"github.com/valter-silva-au/todo/internal/observability"
	"github.com/valter-silva-au/todo/internal/storage"
	"github.com/valter-silva-au/todo/pkg/models"
	"go.uber.org/zap"
)

// EventLogFileName is the activity log kept in the base path.
const EventLogFileName = ".todo_events.jsonl"

// App holds all service dependencies of the to-do list.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr core.ConfigurationManager
	Config    *models.Config

	// Diagnostics
	Logger *zap.Logger

	// Storage layer
	KV storage.KVStore

	// Core services
	Store core.TaskStore

	// Observability
	EventLog    observability.EventLog
	MetricsCalc observability.MetricsCalculator
}

// NewApp creates and wires all components. basePath is the root directory
// where all data is stored (typically ~/.todo or the nearest directory
// containing .todoconfig).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = core.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Config = cfg

	// --- Diagnostics ---
	logPath := cfg.Log.File
	if !filepath.IsAbs(logPath) {
		logPath = filepath.Join(basePath, logPath)
	}
	app.Logger, err = observability.NewLogger(logPath, cfg.Log.Level)
	if err != nil {
		// Non-fatal: run without diagnostics if the log can't be opened.
		app.Logger = zap.NewNop()
	}

	// --- Storage layer ---
	app.KV, err = storage.Open(cfg.Storage.Backend, basePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	// --- Observability ---
	if cfg.Events.Enabled {
		app.EventLog, err = observability.NewJSONLEventLog(filepath.Join(basePath, EventLogFileName))
		if err != nil {
			// Non-fatal: disable activity events if the log can't be created.
			app.Logger.Warn("activity events disabled", zap.Error(err))
			app.EventLog = nil
		}
	}
	if app.EventLog != nil {
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}

	// --- Core services ---
	var events core.EventLogger
	if app.EventLog != nil {
		events = &eventLogAdapter{log: app.EventLog}
	}
	app.Store = core.NewTaskStore(app.KV, core.NewUUIDGenerator(), events, app.Logger.Named("store"), core.StoreOptions{
		Key:             cfg.Storage.Key,
		IncompleteFirst: cfg.List.IncompleteFirst,
		WriteTimeout:    cfg.Storage.WriteTimeout,
	})

	// --- Wire CLI ---
	cli.Store = app.Store
	cli.EventLog = app.EventLog
	cli.MetricsCalc = app.MetricsCalc
	cli.AnimationDuration = cfg.Animation.Duration
	cli.AnimationFPS = cfg.Animation.FPS

	app.Logger.Debug("app initialized",
		zap.String("base_path", basePath),
		zap.String("backend", cfg.Storage.Backend))

	return app, nil
}

// Close waits for pending task writes, then releases the storage backend,
// the event log and the logger. It is safe to call Close on an App whose
// EventLog is nil.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		a.Store.Flush()
	}
	if a.KV != nil {
		if err := a.KV.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing storage: %w", err))
		}
	}
	if a.EventLog != nil {
		if err := a.EventLog.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing event log: %w", err))
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return errors.Join(errs...)
}

// ResolveBasePath determines the data directory. It checks the TODO_HOME
// env var, then walks up from the current directory looking for
// .todoconfig, then falls back to ~/.todo.
func ResolveBasePath() string {
	if home := os.Getenv("TODO_HOME"); home != "" {
		return home
	}
	if dir, err := os.Getwd(); err == nil {
		// Walk up to find a directory containing .todoconfig.
		for {
			if _, err := os.Stat(filepath.Join(dir, core.ConfigFileName)); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".todo")
	}
	// Fall back to cwd.
	cwd, _ := os.Getwd()
	return cwd
}

// --- Adapters ---

// eventLogAdapter adapts observability.EventLog to core.EventLogger. The
// "id" field of the store's payload becomes the event's TaskID.
type eventLogAdapter struct {
	log observability.EventLog
}

func (a *eventLogAdapter) LogEvent(eventType string, data map[string]any) error {
	e := observability.Event{Time: time.Now().UTC(), Type: eventType}
	for k, v := range data {
		if id, ok := v.(string); ok && k == "id" {
			e.TaskID = id
			continue
		}
		if e.Data == nil {
			e.Data = make(map[string]any, len(data))
		}
		e.Data[k] = v
	}
	return a.log.Write(e)
}
