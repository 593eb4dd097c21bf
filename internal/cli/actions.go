package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/zoro11031/hosts-editor/internal/hostsfile"
	"github.com/zoro11031/hosts-editor/internal/metrics"
	"github.com/zoro11031/hosts-editor/internal/system"
)

const permissionHint = "Changing the hosts file needs administrator rights. Re-run with sudo, or from an elevated prompt on Windows."

// resultError turns a failed Result into an error, printing the privilege
// hint when the OS refused access.
func (a *AppContext) resultError(action string, res hostsfile.Result) error {
	if res.Success {
		return nil
	}
	if hostsfile.IsPermissionDenied(res.Err) {
		a.UI.Warning(permissionHint)
	}
	if res.Err != nil {
		return fmt.Errorf("%s failed: %w", action, res.Err)
	}
	return fmt.Errorf("%s failed: %s", action, res.Error)
}

// ShowHosts prints the hosts file. raw writes the bare content to Out.
func (a *AppContext) ShowHosts(ctx context.Context, raw bool) error {
	res := a.Engine.Read(ctx)
	if err := a.resultError("read", res); err != nil {
		return err
	}

	if raw {
		_, err := io.WriteString(a.Out, res.Data)
		return err
	}

	a.UI.Header("Hosts File")
	a.UI.KeyValue("Path", res.Path)
	a.UI.KeyValue("Source", res.Provenance)
	a.UI.KeyValue("Size", fmt.Sprintf("%d bytes", len(res.Data)))
	a.UI.Separator()
	a.UI.Content(res.Data)
	return nil
}

// WriteHosts replaces the hosts file with content.
func (a *AppContext) WriteHosts(ctx context.Context, content string) error {
	res := a.Engine.Write(ctx, content)
	if err := a.resultError("write", res); err != nil {
		return err
	}
	a.UI.Successf("Saved %d bytes to %s", len(content), res.Path)
	return nil
}

// ImportFile writes the content of source to the hosts file. An empty
// source prompts for one.
func (a *AppContext) ImportFile(ctx context.Context, source string) error {
	if source == "" {
		path, err := a.UI.PromptFilePath("File to import")
		if err != nil {
			return err
		}
		source = path
	}

	exists, err := a.Files.FileExists(source)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("source file not found: %s", source)
	}
	if !hostsfile.SizeAcceptable(a.Files, source, a.Engine.SizeLimit()) {
		return fmt.Errorf("%w: %s is larger than %d bytes", hostsfile.ErrSizeExceeded, source, a.Engine.SizeLimit())
	}

	data, err := a.Files.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", source, err)
	}
	return a.WriteHosts(ctx, string(data))
}

// ImportReader writes everything read from r, e.g. stdin, to the hosts file.
func (a *AppContext) ImportReader(ctx context.Context, r io.Reader) error {
	limit := a.Engine.SizeLimit()
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("%w: input is larger than %d bytes", hostsfile.ErrSizeExceeded, limit)
	}
	return a.WriteHosts(ctx, string(data))
}

// EditHosts opens the current content in the user's editor and saves the
// result after confirmation.
func (a *AppContext) EditHosts(ctx context.Context) error {
	res := a.Engine.Read(ctx)
	if err := a.resultError("read", res); err != nil {
		return err
	}

	edited, err := a.UI.PromptEditor("Edit "+res.Path, res.Data)
	if err != nil {
		return err
	}
	if edited == res.Data {
		a.UI.Info("No changes made")
		return nil
	}

	save, err := a.UI.PromptYesNo("Save changes?", true)
	if err != nil {
		return err
	}
	if !save {
		a.UI.Info("Changes discarded")
		return nil
	}
	return a.WriteHosts(ctx, edited)
}

// BackupHosts copies the on-disk hosts file into the backup directory.
func (a *AppContext) BackupHosts(ctx context.Context) error {
	res := a.Engine.Backup(ctx)
	if err := a.resultError("backup", res); err != nil {
		return err
	}
	a.UI.Successf("Backup saved to %s", res.Path)
	return nil
}

// ListBackups prints the available backups, newest first.
func (a *AppContext) ListBackups() ([]hostsfile.BackupInfo, error) {
	backups, err := a.Engine.ListBackups()
	if err != nil {
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	if len(backups) == 0 {
		a.UI.Infof("No backups found in %s", a.Engine.BackupDir())
		return nil, nil
	}

	a.UI.Infof("Backups in %s:", a.Engine.BackupDir())
	for _, b := range backups {
		a.UI.Printf("  %-40s %8d bytes  %s", b.Name, b.Size, b.Modified.Local().Format(time.DateTime))
	}
	return backups, nil
}

// RestoreBackup writes the named backup back to the hosts file. An empty
// name prompts for a choice; assumeYes skips the confirmation.
func (a *AppContext) RestoreBackup(ctx context.Context, name string, assumeYes bool) error {
	if name == "" {
		backups, err := a.Engine.ListBackups()
		if err != nil {
			return fmt.Errorf("failed to list backups: %w", err)
		}
		if len(backups) == 0 {
			return fmt.Errorf("no backups found in %s", a.Engine.BackupDir())
		}
		names := make([]string, len(backups))
		for i, b := range backups {
			names[i] = b.Name
		}
		idx, err := a.UI.PromptSelect("Backup to restore", names)
		if err != nil {
			return err
		}
		name = names[idx]
	}

	if !assumeYes {
		ok, err := a.UI.PromptYesNo(fmt.Sprintf("Replace %s with %s?", a.Engine.Path(), name), false)
		if err != nil {
			return err
		}
		if !ok {
			a.UI.Info("Restore cancelled")
			return nil
		}
	}

	res := a.Engine.Restore(ctx, name)
	if err := a.resultError("restore", res); err != nil {
		return err
	}
	a.UI.Successf("Restored %s from %s", a.Engine.Path(), res.Path)
	return nil
}

// StatusReport is everything the status view shows.
type StatusReport struct {
	Engine         hostsfile.Status      `json:"engine"`
	BackupDir      string                `json:"backupDir"`
	ConfigFile     string                `json:"configFile,omitempty"`
	Privileges     *system.PrivilegeInfo `json:"privileges,omitempty"`
	Operations     []metrics.OpStats     `json:"operations"`
	HeapAllocBytes float64               `json:"heapAllocBytes,omitempty"`
}

// CollectStatus gathers engine, privilege and metrics state.
func (a *AppContext) CollectStatus() StatusReport {
	report := StatusReport{
		Engine:     a.Engine.Status(),
		BackupDir:  a.Engine.BackupDir(),
		ConfigFile: a.Config.Source(),
		Operations: a.Metrics.Snapshot(),
	}
	if priv, err := system.CurrentPrivileges(); err == nil {
		report.Privileges = &priv
	}
	if heap, ok := a.Metrics.HeapAllocBytes(); ok {
		report.HeapAllocBytes = heap
	}
	return report
}

// ShowStatus prints the status report, as JSON to Out when asJSON is set.
func (a *AppContext) ShowStatus(asJSON bool) error {
	report := a.CollectStatus()

	if asJSON {
		enc := json.NewEncoder(a.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	st := report.Engine
	a.UI.Header("Status")
	a.UI.KeyValue("Hosts file", st.Path)
	a.UI.KeyValue("Initialized", st.Initialized)
	a.UI.KeyValue("Watching", st.Watching)
	a.UI.KeyValue("Subscribers", st.WindowCount)
	if st.CacheValid {
		a.UI.KeyValue("Cache", fmt.Sprintf("%d bytes, hash %s", st.CacheSize, st.CacheHash))
	} else {
		a.UI.KeyValue("Cache", "empty")
	}
	a.UI.KeyValue("Generation", st.Generation)
	a.UI.KeyValue("Backups", report.BackupDir)
	if report.ConfigFile != "" {
		a.UI.KeyValue("Config", report.ConfigFile)
	}
	if report.Privileges != nil {
		a.UI.KeyValue("User", report.Privileges.Username)
		a.UI.KeyValue("Elevated", report.Privileges.Elevated)
		if !report.Privileges.Elevated {
			a.UI.Warning("Not running elevated; writes to the system hosts file will likely fail")
		}
	}
	if report.HeapAllocBytes > 0 {
		a.UI.KeyValue("Heap", fmt.Sprintf("%.1f MiB", report.HeapAllocBytes/(1<<20)))
	}

	if len(report.Operations) == 0 {
		return nil
	}
	a.UI.Separator()
	a.UI.Printf("  %-10s %6s %6s %8s %10s %10s %10s %5s", "OP", "CALLS", "ERRORS", "ERR%", "AVG", "MIN", "MAX", "SLOW")
	for _, op := range report.Operations {
		a.UI.Printf("  %-10s %6d %6d %7.1f%% %10s %10s %10s %5d",
			op.Op, op.Calls, op.Errors, op.ErrorRate*100,
			op.Avg.Round(time.Microsecond), op.Min.Round(time.Microsecond), op.Max.Round(time.Microsecond),
			op.SlowCalls)
	}
	return nil
}

// ClearCache drops the cached content so the next read goes to disk.
func (a *AppContext) ClearCache() error {
	if err := a.resultError("clear cache", a.Engine.ClearCache()); err != nil {
		return err
	}
	a.UI.Success("Cache cleared; the next read goes to disk")
	return nil
}

// ResetStats clears the per-operation timing windows.
func (a *AppContext) ResetStats() error {
	a.Metrics.Reset()
	a.UI.Success("Operation statistics reset")
	return nil
}

// ReloadWatcher replaces the change watcher subscription.
func (a *AppContext) ReloadWatcher() error {
	res := a.Engine.ReloadWatcher()
	if err := a.resultError("reload watcher", res); err != nil {
		return err
	}
	a.UI.Successf("Watching %s for external changes", res.Path)
	return nil
}

// OpenDocs opens the project documentation in the default browser.
func (a *AppContext) OpenDocs(ctx context.Context) error {
	if err := a.Opener.Open(ctx, DocsURL); err != nil {
		return err
	}
	a.UI.Infof("Opened %s", DocsURL)
	return nil
}

// Watch prints change events until ctx is done. showContent also writes
// each new content to Out.
func (a *AppContext) Watch(ctx context.Context, showContent bool) error {
	if !a.Engine.Status().Watching {
		if err := a.Engine.StartWatching(); err != nil {
			return fmt.Errorf("failed to start watcher: %w", err)
		}
	}

	sub := a.Engine.Subscribe()
	defer sub.Close()

	a.UI.Infof("Watching %s for changes (Ctrl+C to stop)", a.Engine.Path())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			a.UI.Infof("%s changed on disk: %d bytes, hash %s, generation %d",
				a.Engine.Path(), len(ev.Content), ev.Hash, ev.Generation)
			if showContent {
				if _, err := io.WriteString(a.Out, ev.Content); err != nil {
					return err
				}
			}
		}
	}
}
