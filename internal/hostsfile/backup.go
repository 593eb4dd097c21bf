package hostsfile

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/zoro11031/hosts-editor/internal/common"
)

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// BackupInfo describes a backup file on disk.
type BackupInfo struct {
	Name     string    `json:"name" yaml:"name"`
	Path     string    `json:"path" yaml:"path"`
	Size     int64     `json:"size" yaml:"size"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

// BackupFileName renders t as a filesystem-safe backup name, e.g.
// hosts-backup-2026-01-02T03-04-05-678Z.txt
func BackupFileName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return common.BackupPrefix + timestampReplacer.Replace(stamp) + common.BackupSuffix
}

func (e *Engine) backupFresh() (dest string, err error) {
	start := time.Now()
	defer func() { e.finish(OpBackup, start, err) }()

	if e.backupDir == "" {
		return "", errBackupDirUnset
	}

	content, err := ReadWithRetry(e.ctx, e.fs, e.path, e.runner(OpBackup))
	if err != nil {
		return "", err
	}

	if err := e.fs.EnsureDirectory(e.backupDir, 0o755); err != nil {
		return "", err
	}

	dest = filepath.Join(e.backupDir, BackupFileName(e.clock()))
	if err := WriteWithRetry(e.ctx, e.fs, dest, content, e.runner(OpBackup)); err != nil {
		return "", err
	}
	return dest, nil
}

// ListBackups returns the backups in the backup directory, newest first.
// A missing directory yields an empty list.
func (e *Engine) ListBackups() ([]BackupInfo, error) {
	if e.backupDir == "" {
		return nil, errBackupDirUnset
	}

	entries, err := e.fs.ListDirectory(e.backupDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var backups []BackupInfo
	for _, entry := range entries {
		if entry.IsDir() || common.ValidateBackupName(entry.Name()) != nil {
			continue
		}
		backups = append(backups, BackupInfo{
			Name:     entry.Name(),
			Path:     filepath.Join(e.backupDir, entry.Name()),
			Size:     entry.Size(),
			Modified: entry.ModTime(),
		})
	}

	// Names embed a sortable UTC timestamp.
	sort.Slice(backups, func(i, j int) bool { return backups[i].Name > backups[j].Name })
	return backups, nil
}

// Restore writes the named backup back to the managed file through Write.
func (e *Engine) Restore(ctx context.Context, name string) Result {
	if err := e.checkOpen(ctx); err != nil {
		return failed(err)
	}
	if err := common.ValidateBackupName(name); err != nil {
		return failed(err)
	}
	if e.backupDir == "" {
		return failed(errBackupDirUnset)
	}

	start := time.Now()
	src := filepath.Join(e.backupDir, name)
	if !SizeAcceptable(e.fs, src, e.sizeLimit) {
		err := sizeErrorFor(src, e.sizeLimit)
		e.finish(OpRestore, start, err)
		return failed(err)
	}

	content, err := ReadWithRetry(e.ctx, e.fs, src, e.runner(OpRestore))
	e.finish(OpRestore, start, err)
	if err != nil {
		return failed(err)
	}

	res := e.Write(ctx, content)
	if res.Success {
		res.Path = src
	}
	return res
}
