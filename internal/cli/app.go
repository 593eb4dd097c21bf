// Package cli wires configuration, logging, metrics and the hosts file
// engine together and exposes the actions shared by the cobra commands and
// the interactive menu.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zoro11031/hosts-editor/internal/config"
	"github.com/zoro11031/hosts-editor/internal/hostsfile"
	"github.com/zoro11031/hosts-editor/internal/logging"
	"github.com/zoro11031/hosts-editor/internal/metrics"
	"github.com/zoro11031/hosts-editor/internal/retry"
	"github.com/zoro11031/hosts-editor/internal/system"
	"github.com/zoro11031/hosts-editor/internal/ui"
)

// DocsURL is opened by the docs action.
const DocsURL = "https://github.com/zoro11031/hosts-editor#readme"

// Options controls how NewAppContext builds its dependencies.
type Options struct {
	ConfigPath     string
	Overrides      map[string]interface{}
	NonInteractive bool
	// Watch starts the change watcher when the configuration enables it.
	Watch bool
}

// AppContext holds all dependencies needed by commands and the menu
type AppContext struct {
	Config  *config.Config
	UI      *ui.UI
	Engine  *hostsfile.Engine
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Opener  *system.Opener
	// Files reads import sources; it is the real filesystem outside tests.
	Files *system.FileSystem
	// Out receives raw data such as `show --raw` output.
	Out io.Writer

	server    *metrics.Server
	closeLog  func() error
	closeOnce sync.Once
}

// deps are the pieces NewAppContext takes from the environment.
type deps struct {
	fs      system.FileSystemManager
	files   *system.FileSystem
	ui      *ui.UI
	out     io.Writer
	logger  *zap.Logger
	runner  system.CommandRunner
	sleeper retry.Sleeper
}

// NewAppContext loads configuration and builds every dependency.
func NewAppContext(opts Options) (*AppContext, error) {
	cfg, err := config.Load(opts.ConfigPath, opts.Overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}

	uiInstance := ui.New()
	uiInstance.SetNonInteractive(opts.NonInteractive)

	files := system.NewFileSystem()
	app, err := assemble(cfg, deps{
		fs:     files,
		files:  files,
		ui:     uiInstance,
		out:    os.Stdout,
		logger: logger,
		runner: system.NewCommandRunner(),
	})
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	app.closeLog = closeLog

	if cfg.Metrics.Listen != "" {
		srv, err := metrics.NewServer(cfg.Metrics.Listen, app.Metrics, logger)
		if err != nil {
			_ = app.Close()
			return nil, err
		}
		srv.Serve()
		app.server = srv
	}

	if opts.Watch && cfg.Watcher.Enabled {
		app.startWatching()
	}

	logger.Debug("application context ready",
		zap.String("path", app.Engine.Path()),
		zap.String("config", cfg.Source()),
		zap.String("backup_dir", app.Engine.BackupDir()))
	return app, nil
}

func assemble(cfg *config.Config, d deps) (*AppContext, error) {
	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	path := system.NewPathResolver(cfg.Hosts.Path).Resolve()

	backupDir := cfg.Backup.Dir
	if backupDir == "" {
		dir, err := system.DocumentsDir(d.files)
		if err != nil {
			d.logger.Warn("no documents directory, backups disabled", zap.Error(err))
		}
		backupDir = dir
	}

	collector := metrics.New(d.logger, cfg.Metrics.SlowCallThreshold)

	policy := retry.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
	}
	d.logger.Debug("retry policy",
		zap.Int("attempts", policy.Attempts()),
		zap.Duration("worst_case_delay", policy.WorstCaseDelay()))

	engine, err := hostsfile.New(hostsfile.Options{
		FS:          d.fs,
		Path:        path,
		SizeLimit:   cfg.Hosts.SizeLimit,
		Retry:       policy,
		Sleeper:     d.sleeper,
		SettleDelay: cfg.Watcher.SettleDelay,
		BackupDir:   backupDir,
		Logger:      d.logger,
		Recorder:    collector,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize hosts engine: %w", err)
	}

	return &AppContext{
		Config:   cfg,
		UI:       d.ui,
		Engine:   engine,
		Logger:   d.logger,
		Metrics:  collector,
		Opener:   system.NewOpener(d.runner),
		Files:    d.files,
		Out:      d.out,
		closeLog: func() error { return nil },
	}, nil
}

// startWatching arms the watcher. Failure leaves the app usable without
// change notifications.
func (a *AppContext) startWatching() {
	if err := a.Engine.StartWatching(); err != nil {
		a.Logger.Warn("change watcher unavailable", zap.Error(err))
		a.UI.Warningf("Not watching for external changes: %v", err)
	}
}

// Close releases the engine, the metrics listener and the log output.
func (a *AppContext) Close() error {
	var firstErr error
	a.closeOnce.Do(func() {
		if err := a.Engine.Close(); err != nil {
			firstErr = err
		}
		if a.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if err := a.server.Shutdown(ctx); err != nil && firstErr == nil {
				firstErr = err
			}
			cancel()
		}
		if err := a.closeLog(); err != nil && firstErr == nil {
			firstErr = err
		}
	})
	return firstErr
}
