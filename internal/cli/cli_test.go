package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zoro11031/hosts-editor/internal/config"
	"github.com/zoro11031/hosts-editor/internal/hostsfile"
	"github.com/zoro11031/hosts-editor/internal/retry"
	"github.com/zoro11031/hosts-editor/internal/system"
	"github.com/zoro11031/hosts-editor/internal/ui"
)

const (
	hostsPath = "/etc/hosts"
	backupDir = "/home/user/Documents"
	initial   = "127.0.0.1 localhost\n"
)

func init() {
	color.NoColor = true
}

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type fakeRunner struct {
	name string
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.name = name
	f.args = args
	return "", nil
}

type testApp struct {
	*AppContext
	fs     *system.MockFileSystem
	uiOut  *syncBuffer
	out    *syncBuffer
	runner *fakeRunner
}

func newTestApp(t *testing.T, mutate func(*config.Config)) *testApp {
	t.Helper()

	mfs := system.NewMockFileSystem()
	mfs.Seed(hostsPath, []byte(initial))

	cfg := config.Default()
	cfg.Hosts.Path = hostsPath
	cfg.Backup.Dir = backupDir
	cfg.Retry.BaseDelay = time.Millisecond
	if mutate != nil {
		mutate(cfg)
	}

	uiOut, out := &syncBuffer{}, &syncBuffer{}
	u := ui.NewWithWriter(uiOut)
	u.SetNonInteractive(true)
	runner := &fakeRunner{}

	app, err := assemble(cfg, deps{
		fs:      mfs,
		files:   mfs.FileSystem,
		ui:      u,
		out:     out,
		runner:  runner,
		sleeper: retry.SleeperFunc(func(ctx context.Context, _ time.Duration) error { return ctx.Err() }),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	return &testApp{AppContext: app, fs: mfs, uiOut: uiOut, out: out, runner: runner}
}

func content(t *testing.T, a *testApp, path string) string {
	t.Helper()
	data, err := a.fs.Content(path)
	require.NoError(t, err)
	return string(data)
}

func TestShowHostsRaw(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.ShowHosts(context.Background(), true))
	assert.Equal(t, initial, a.out.String())
}

func TestShowHostsReportsProvenance(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.ShowHosts(context.Background(), false))
	assert.Contains(t, a.uiOut.String(), "fresh")
	assert.Contains(t, a.uiOut.String(), "1 │ 127.0.0.1 localhost")

	require.NoError(t, a.ShowHosts(context.Background(), false))
	assert.Contains(t, a.uiOut.String(), "cached")
	assert.Equal(t, 1, a.fs.Reads())
}

func TestWriteHostsPersists(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.WriteHosts(context.Background(), "10.0.0.1 nas\n"))
	assert.Equal(t, "10.0.0.1 nas\n", content(t, a, hostsPath))
	assert.Contains(t, a.uiOut.String(), "Saved 13 bytes to /etc/hosts")
}

func TestWriteHostsPermissionHint(t *testing.T) {
	a := newTestApp(t, nil)
	a.fs.FailNextWrites(3, &fs.PathError{Op: "open", Path: hostsPath, Err: fs.ErrPermission})

	err := a.WriteHosts(context.Background(), "10.0.0.1 nas\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrPermission)
	assert.Contains(t, a.uiOut.String(), "administrator rights")
	assert.Equal(t, initial, content(t, a, hostsPath))
}

func TestImportFile(t *testing.T) {
	a := newTestApp(t, nil)
	a.fs.Seed("/tmp/hosts.new", []byte("192.168.1.10 printer\n"))

	require.NoError(t, a.ImportFile(context.Background(), "/tmp/hosts.new"))
	assert.Equal(t, "192.168.1.10 printer\n", content(t, a, hostsPath))
}

func TestImportFileRejectsOversizedAndMissing(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.Hosts.SizeLimit = 16 })
	a.fs.Seed("/tmp/big", []byte(strings.Repeat("x", 17)))

	err := a.ImportFile(context.Background(), "/tmp/big")
	assert.ErrorIs(t, err, hostsfile.ErrSizeExceeded)

	err = a.ImportFile(context.Background(), "/tmp/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Equal(t, 0, a.fs.Writes())
}

func TestImportFilePromptsForSource(t *testing.T) {
	a := newTestApp(t, nil)

	err := a.ImportFile(context.Background(), "")
	assert.ErrorIs(t, err, ui.ErrNonInteractive)
}

func TestImportReader(t *testing.T) {
	a := newTestApp(t, func(c *config.Config) { c.Hosts.SizeLimit = 16 })

	require.NoError(t, a.ImportReader(context.Background(), strings.NewReader("10.0.0.1 nas\n")))
	assert.Equal(t, "10.0.0.1 nas\n", content(t, a, hostsPath))

	err := a.ImportReader(context.Background(), strings.NewReader(strings.Repeat("y", 17)))
	assert.ErrorIs(t, err, hostsfile.ErrSizeExceeded)
	assert.Equal(t, "10.0.0.1 nas\n", content(t, a, hostsPath))
}

func TestEditHostsNonInteractive(t *testing.T) {
	a := newTestApp(t, nil)

	err := a.EditHosts(context.Background())
	assert.ErrorIs(t, err, ui.ErrNonInteractive)
	assert.Equal(t, 0, a.fs.Writes())
}

func TestBackupListRestore(t *testing.T) {
	a := newTestApp(t, nil)
	ctx := context.Background()

	require.NoError(t, a.BackupHosts(ctx))
	assert.Contains(t, a.uiOut.String(), "Backup saved to "+backupDir)

	require.NoError(t, a.WriteHosts(ctx, "10.0.0.1 nas\n"))

	backups, err := a.ListBackups()
	require.NoError(t, err)
	require.Len(t, backups, 1)
	assert.True(t, strings.HasPrefix(backups[0].Name, "hosts-backup-"))

	require.NoError(t, a.RestoreBackup(ctx, backups[0].Name, true))
	assert.Equal(t, initial, content(t, a, hostsPath))

	res := a.Engine.Read(ctx)
	assert.True(t, res.Cached())
	assert.Equal(t, initial, res.Data)
}

func TestListBackupsEmpty(t *testing.T) {
	a := newTestApp(t, nil)

	backups, err := a.ListBackups()
	require.NoError(t, err)
	assert.Empty(t, backups)
	assert.Contains(t, a.uiOut.String(), "No backups found")
}

func TestRestoreRequiresConfirmation(t *testing.T) {
	a := newTestApp(t, nil)

	err := a.RestoreBackup(context.Background(), "hosts-backup-2026-01-02T03-04-05-678Z.txt", false)
	assert.ErrorIs(t, err, ui.ErrNonInteractive)
}

func TestRestoreWithoutBackups(t *testing.T) {
	a := newTestApp(t, nil)

	err := a.RestoreBackup(context.Background(), "", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backups found")
}

func TestShowStatusJSON(t *testing.T) {
	a := newTestApp(t, nil)
	require.True(t, a.Engine.Read(context.Background()).Success)

	require.NoError(t, a.ShowStatus(true))

	var report StatusReport
	require.NoError(t, json.Unmarshal([]byte(a.out.String()), &report))
	assert.True(t, report.Engine.Initialized)
	assert.True(t, report.Engine.CacheValid)
	assert.Equal(t, hostsPath, report.Engine.Path)
	assert.Equal(t, hostsfile.Fingerprint(initial), report.Engine.CacheHash)
	assert.Equal(t, backupDir, report.BackupDir)

	require.NotEmpty(t, report.Operations)
	assert.Equal(t, hostsfile.OpRead, report.Operations[0].Op)
	assert.Equal(t, int64(1), report.Operations[0].Calls)
}

func TestShowStatusText(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.ShowStatus(false))
	out := a.uiOut.String()
	assert.Contains(t, out, "Hosts file:")
	assert.Contains(t, out, "empty")
}

func TestClearCache(t *testing.T) {
	a := newTestApp(t, nil)
	require.True(t, a.Engine.Read(context.Background()).Success)

	require.NoError(t, a.ClearCache())
	assert.False(t, a.Engine.Status().CacheValid)

	res := a.Engine.Read(context.Background())
	assert.False(t, res.Cached())
	assert.Equal(t, 2, a.fs.Reads())
}

func TestResetStats(t *testing.T) {
	a := newTestApp(t, nil)
	require.True(t, a.Engine.Read(context.Background()).Success)
	require.NotEmpty(t, a.Metrics.Snapshot())

	require.NoError(t, a.ResetStats())
	assert.Empty(t, a.Metrics.Snapshot())
}

func TestOpenDocs(t *testing.T) {
	a := newTestApp(t, nil)

	require.NoError(t, a.OpenDocs(context.Background()))
	require.NotEmpty(t, a.runner.args)
	assert.Equal(t, DocsURL, a.runner.args[len(a.runner.args)-1])
}

// newDiskApp builds an app over a real temp directory with a short settle delay.
func newDiskApp(t *testing.T) (*AppContext, string, *syncBuffer, *syncBuffer) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))

	cfg := config.Default()
	cfg.Hosts.Path = path
	cfg.Backup.Dir = filepath.Join(dir, "backups")
	cfg.Watcher.SettleDelay = 50 * time.Millisecond

	files := system.NewFileSystem()
	uiOut, out := &syncBuffer{}, &syncBuffer{}
	u := ui.NewWithWriter(uiOut)
	u.SetNonInteractive(true)
	app, err := assemble(cfg, deps{fs: files, files: files, ui: u, out: out, runner: &fakeRunner{}})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app, path, uiOut, out
}

func TestWatchStreamsChangesUntilCancelled(t *testing.T) {
	app, path, uiOut, out := newDiskApp(t)

	require.True(t, app.Engine.Read(context.Background()).Success)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Watch(ctx, true) }()

	require.Eventually(t, func() bool { return app.Engine.Status().WindowCount == 1 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("10.0.0.5 laptop\n"), 0o644))

	assert.Eventually(t, func() bool { return out.String() == "10.0.0.5 laptop\n" }, 3*time.Second, 10*time.Millisecond)
	assert.Contains(t, uiOut.String(), "changed on disk")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancellation")
	}
	assert.Equal(t, 0, app.Engine.Status().WindowCount)
}

func TestNewAppContextFromConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hosts")
	require.NoError(t, os.WriteFile(path, []byte(initial), 0o644))

	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "hosts:\n  path: " + path + "\n" +
		"backup:\n  dir: " + filepath.Join(dir, "backups") + "\n" +
		"watcher:\n  enabled: false\n" +
		"logging:\n  output: " + filepath.Join(dir, "logs", "hosts-editor.log") + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o644))

	app, err := NewAppContext(Options{ConfigPath: cfgPath, NonInteractive: true, Watch: true})
	require.NoError(t, err)

	assert.Equal(t, path, app.Engine.Path())
	assert.Equal(t, filepath.Join(dir, "backups"), app.Engine.BackupDir())
	assert.Equal(t, cfgPath, app.Config.Source())
	assert.False(t, app.Engine.Status().Watching)
	assert.True(t, app.UI.IsNonInteractive())

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
	assert.False(t, app.Engine.Status().Initialized)
}

func TestNewAppContextRejectsBadConfig(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("hosts:\n  path: relative/hosts\n"), 0o644))

	_, err := NewAppContext(Options{ConfigPath: cfgPath})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config")
}
