package common

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// BackupPrefix and BackupSuffix frame every backup file name.
const (
	BackupPrefix = "hosts-backup-"
	BackupSuffix = ".txt"
)

// ValidateURL accepts http, https and mailto URLs only
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("url cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("url has no host: %s", raw)
		}
	case "mailto":
		if u.Opaque == "" {
			return fmt.Errorf("mailto url has no address: %s", raw)
		}
	default:
		return fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return nil
}

// ValidatePath validates that a path is absolute
func ValidatePath(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("path must be absolute: %s", path)
	}
	return nil
}

// ValidateBackupName checks that name is a bare backup file name
func ValidateBackupName(name string) error {
	if name == "" {
		return fmt.Errorf("backup name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("backup name must not contain path separators: %s", name)
	}
	if !strings.HasPrefix(name, BackupPrefix) || !strings.HasSuffix(name, BackupSuffix) {
		return fmt.Errorf("not a backup file name: %s", name)
	}
	return nil
}
