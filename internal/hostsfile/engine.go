package hostsfile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zoro11031/hosts-editor/internal/retry"
	"github.com/zoro11031/hosts-editor/internal/system"
)

// Operation names passed to the Recorder.
const (
	OpRead      = "read"
	OpWrite     = "write"
	OpBackup    = "backup"
	OpRestore   = "restore"
	OpReconcile = "reconcile"
)

// Options configures an Engine.
type Options struct {
	FS          system.FileSystemManager // required
	Path        string                   // required, already resolved
	SizeLimit   int64                    // defaults to DefaultSizeLimit
	Retry       retry.Policy             // defaults to retry.DefaultPolicy()
	Sleeper     retry.Sleeper            // defaults to retry.TimerSleeper
	SettleDelay time.Duration            // defaults to DefaultSettleDelay
	BackupDir   string                   // required for Backup, ListBackups and Restore
	Clock       func() time.Time
	Logger      *zap.Logger
	Recorder    Recorder
}

// Engine owns the cache, the watcher and the managed path.
type Engine struct {
	fs        system.FileSystemManager
	path      string
	sizeLimit int64
	policy    retry.Policy
	sleeper   retry.Sleeper
	backupDir string
	clock     func() time.Time
	logger    *zap.Logger
	recorder  Recorder

	cache   Cache
	bcast   *broadcaster
	watcher *Watcher

	reads   singleflight.Group
	backups singleflight.Group
	writeMu sync.Mutex

	// ctx bounds retry sleeps; it is cancelled only by Close.
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool

	// watchMu serializes watcher start/stop against Close.
	watchMu sync.Mutex
}

// New builds an Engine. The watcher is not started.
func New(opts Options) (*Engine, error) {
	if opts.FS == nil {
		return nil, fmt.Errorf("filesystem is required")
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if opts.SizeLimit <= 0 {
		opts.SizeLimit = DefaultSizeLimit
	}
	if opts.Retry.MaxAttempts == 0 && opts.Retry.BaseDelay == 0 {
		opts.Retry = retry.DefaultPolicy()
	}
	if opts.Sleeper == nil {
		opts.Sleeper = retry.TimerSleeper{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Recorder == nil {
		opts.Recorder = NopRecorder{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		fs:        opts.FS,
		path:      opts.Path,
		sizeLimit: opts.SizeLimit,
		policy:    opts.Retry,
		sleeper:   opts.Sleeper,
		backupDir: opts.BackupDir,
		clock:     opts.Clock,
		logger:    opts.Logger.With(zap.String("path", opts.Path)),
		recorder:  opts.Recorder,
		bcast:     newBroadcaster(),
		ctx:       ctx,
		cancel:    cancel,
	}
	e.watcher = NewWatcher(opts.Path, opts.SettleDelay, e.reconcile, e.logger)
	return e, nil
}

// Path returns the managed file path.
func (e *Engine) Path() string {
	return e.path
}

// SizeLimit returns the configured ceiling in bytes.
func (e *Engine) SizeLimit() int64 {
	return e.sizeLimit
}

// BackupDir returns the directory backups are written to.
func (e *Engine) BackupDir() string {
	return e.backupDir
}

func (e *Engine) runner(op string) retry.Runner {
	return retry.Runner{
		Policy:  e.policy,
		Sleeper: e.sleeper,
		OnFailure: func(attempt int, err error) {
			e.recorder.ObserveRetry(op, attempt, err)
			e.logger.Debug("attempt failed", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		},
	}
}

// checkOpen rejects calls on a closed engine or with an already-done ctx.
// In-flight retries are not tied to ctx; they stop only on Close.
func (e *Engine) checkOpen(ctx context.Context) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	return ctx.Err()
}

func (e *Engine) finish(op string, start time.Time, err error) {
	d := time.Since(start)
	e.recorder.ObserveOperation(op, d, err)
	if err != nil {
		e.logger.Error("operation failed", zap.String("op", op), zap.Duration("duration", d), zap.Error(err))
		return
	}
	e.logger.Debug("operation completed", zap.String("op", op), zap.Duration("duration", d))
}

// Read returns the content, from the cache when it is valid.
func (e *Engine) Read(ctx context.Context) Result {
	if err := e.checkOpen(ctx); err != nil {
		return failed(err)
	}

	if content, ok := e.cache.Get(); ok {
		e.recorder.ObserveCacheLookup(true)
		return succeeded(content, ProvenanceCached, e.path)
	}
	e.recorder.ObserveCacheLookup(false)

	v, err, _ := e.reads.Do(OpRead, func() (interface{}, error) {
		return e.readFresh()
	})
	if err != nil {
		return failed(err)
	}
	return succeeded(v.(string), ProvenanceFresh, e.path)
}

func (e *Engine) readFresh() (content string, err error) {
	start := time.Now()
	defer func() { e.finish(OpRead, start, err) }()

	seen := e.cache.Generation()
	if !SizeAcceptable(e.fs, e.path, e.sizeLimit) {
		return "", e.sizeError()
	}

	content, err = ReadWithRetry(e.ctx, e.fs, e.path, e.runner(OpRead))
	if err != nil {
		return "", err
	}
	if !e.cache.SetIfCurrent(content, seen) {
		e.logger.Debug("read result not cached, cache changed during read")
	}
	return content, nil
}

func (e *Engine) sizeError() error {
	return sizeErrorFor(e.path, e.sizeLimit)
}

func sizeErrorFor(path string, limit int64) error {
	return fmt.Errorf("%w: %s is larger than %d bytes or its size could not be read", ErrSizeExceeded, path, limit)
}

// Write replaces the file content. On success the cache holds content.
func (e *Engine) Write(ctx context.Context, content string) Result {
	if err := e.checkOpen(ctx); err != nil {
		return failed(err)
	}
	if content == "" {
		return failed(fmt.Errorf("%w: content is empty", ErrInvalidInput))
	}
	if !contentAcceptable(content, e.sizeLimit) {
		return failed(fmt.Errorf("%w: content is %d bytes, limit is %d", ErrSizeExceeded, len(content), e.sizeLimit))
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()

	start := time.Now()
	err := WriteWithRetry(e.ctx, e.fs, e.path, content, e.runner(OpWrite))
	e.finish(OpWrite, start, err)
	if err != nil {
		return failed(err)
	}

	e.cache.Set(content)
	return Result{Success: true, Path: e.path}
}

// Backup copies the current disk content, never the cache, into the
// backup directory and returns the destination in Result.Path.
func (e *Engine) Backup(ctx context.Context) Result {
	if err := e.checkOpen(ctx); err != nil {
		return failed(err)
	}

	v, err, _ := e.backups.Do(OpBackup, func() (interface{}, error) {
		return e.backupFresh()
	})
	if err != nil {
		return failed(err)
	}
	return Result{Success: true, Path: v.(string)}
}

// ClearCache invalidates the cache so the next Read goes to disk.
func (e *Engine) ClearCache() Result {
	e.cache.Invalidate()
	e.logger.Debug("cache cleared")
	return Result{Success: true}
}

// StartWatching arms the change watcher.
func (e *Engine) StartWatching() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if err := e.checkOpen(context.Background()); err != nil {
		return err
	}
	return e.watcher.Start()
}

// StopWatching tears down the change watcher. It is a no-op when idle.
func (e *Engine) StopWatching() error {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()
	return e.watcher.Stop()
}

// ReloadWatcher tears down any live subscription and creates a new one.
func (e *Engine) ReloadWatcher() Result {
	e.watchMu.Lock()
	defer e.watchMu.Unlock()

	if err := e.checkOpen(context.Background()); err != nil {
		return failed(err)
	}
	if err := e.watcher.Stop(); err != nil {
		e.logger.Warn("failed to stop watcher", zap.Error(err))
	}
	if err := e.watcher.Start(); err != nil {
		return failed(err)
	}
	return Result{Success: true, Path: e.path}
}

// Subscribe registers for change events. The caller must Close it.
// Each subscription buffers 16 events; while the buffer is full further
// events are dropped for that subscriber only.
func (e *Engine) Subscribe() *Subscription {
	return e.bcast.subscribe()
}

// Status returns a snapshot for display.
func (e *Engine) Status() Status {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()

	content, valid := e.cache.Get()
	st := Status{
		Initialized: !closed,
		Path:        e.path,
		CacheSize:   len(content),
		CacheValid:  valid,
		Generation:  e.cache.Generation(),
		Watching:    e.watcher.Running(),
		WindowCount: e.bcast.count(),
	}
	if valid {
		st.CacheHash = Fingerprint(content)
	}
	return st
}

// Close stops the watcher, aborts pending retry sleeps and closes every
// subscription. It is safe to call more than once.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	e.cancel()
	// A start or reload that won the race is stopped here.
	e.watchMu.Lock()
	err := e.watcher.Stop()
	e.watchMu.Unlock()
	e.bcast.close()
	return err
}

// reconcile runs on the watcher goroutine once notifications settle.
func (e *Engine) reconcile() {
	start := time.Now()
	seen := e.cache.Generation()

	if !SizeAcceptable(e.fs, e.path, e.sizeLimit) {
		e.recorder.ObserveReconcile("rejected")
		e.logger.Warn("watcher skipped oversized or unreadable file", zap.Int64("limit", e.sizeLimit))
		return
	}

	content, err := ReadWithRetry(e.ctx, e.fs, e.path, e.runner(OpReconcile))
	e.recorder.ObserveOperation(OpReconcile, time.Since(start), err)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		e.recorder.ObserveReconcile("error")
		e.logger.Warn("watcher read failed", zap.Error(err))
		return
	}

	outcome, gen := e.cache.Reconcile(content, seen)
	e.recorder.ObserveReconcile(outcome.String())
	if outcome != ReconcileApplied {
		e.logger.Debug("watcher reconcile", zap.Stringer("outcome", outcome))
		return
	}

	ev := Event{
		Content:    content,
		Hash:       Fingerprint(content),
		Generation: gen,
		Timestamp:  e.clock(),
	}
	delivered, dropped := e.bcast.publish(ev)
	e.logger.Info("external change detected",
		zap.String("hash", ev.Hash),
		zap.Uint64("generation", gen),
		zap.Int("subscribers", delivered))
	if dropped > 0 {
		e.logger.Debug("change event dropped for slow subscribers", zap.Int("dropped", dropped))
	}
}
