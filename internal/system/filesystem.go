package system

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
)

// FileSystem handles file system operations on top of an afero.Fs
type FileSystem struct {
	fs afero.Fs
}

// NewFileSystem creates a FileSystem backed by the real OS filesystem
func NewFileSystem() *FileSystem {
	return NewFileSystemWithFs(afero.NewOsFs())
}

// NewFileSystemWithFs creates a FileSystem backed by the given afero.Fs
func NewFileSystemWithFs(fs afero.Fs) *FileSystem {
	return &FileSystem{fs: fs}
}

// ReadFile reads the whole file. Errors are returned unwrapped so callers
// can surface the OS message as-is.
func (f *FileSystem) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(f.fs, path)
}

// WriteFile truncates and rewrites the file in place.
// It is not atomic: a failure part-way can leave a partial file.
func (f *FileSystem) WriteFile(path string, content []byte, perms os.FileMode) error {
	return afero.WriteFile(f.fs, path, content, perms)
}

// FileSize returns the size of a file in bytes
func (f *FileSystem) FileSize(path string) (int64, error) {
	info, err := f.fs.Stat(path)
	if err != nil {
		return 0, err
	}
	if info.IsDir() {
		return 0, fmt.Errorf("%s is a directory", path)
	}
	return info.Size(), nil
}

// FileExists checks if a file exists
func (f *FileSystem) FileExists(path string) (bool, error) {
	ok, err := afero.Exists(f.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check if file exists %s: %w", path, err)
	}
	return ok, nil
}

// DirectoryExists checks if a directory exists
func (f *FileSystem) DirectoryExists(path string) (bool, error) {
	ok, err := afero.DirExists(f.fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check if directory exists %s: %w", path, err)
	}
	return ok, nil
}

// EnsureDirectory creates a directory with the given permissions.
// If the directory already exists, it does nothing
func (f *FileSystem) EnsureDirectory(path string, perms os.FileMode) error {
	if info, err := f.fs.Stat(path); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists but is not a directory", path)
		}
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check directory %s: %w", path, err)
	}

	if err := f.fs.MkdirAll(path, perms); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// ListDirectory lists all entries in a directory, sorted by name
func (f *FileSystem) ListDirectory(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(f.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", path, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	return entries, nil
}
