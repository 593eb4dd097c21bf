package hostsfile

import (
	"context"

	"github.com/zoro11031/hosts-editor/internal/retry"
	"github.com/zoro11031/hosts-editor/internal/system"
)

const filePerms = 0o644

// ReadWithRetry reads path, retrying per r. The last error is returned as is.
func ReadWithRetry(ctx context.Context, fs system.FileSystemManager, path string, r retry.Runner) (string, error) {
	return retry.DoWithResult(ctx, r, func() (string, error) {
		data, err := fs.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	})
}

// WriteWithRetry truncates and writes path, retrying per r.
// A failed attempt may leave a partial file; the next attempt rewrites it whole.
func WriteWithRetry(ctx context.Context, fs system.FileSystemManager, path, content string, r retry.Runner) error {
	return r.Do(ctx, func() error {
		return fs.WriteFile(path, []byte(content), filePerms)
	})
}
