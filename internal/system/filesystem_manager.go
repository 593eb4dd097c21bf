package system

import "os"

// FileSystemManager defines the file operations the hosts engine needs.
// This allows for mocking the file system in tests.
type FileSystemManager interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte, perms os.FileMode) error
	FileSize(path string) (int64, error)
	EnsureDirectory(path string, perms os.FileMode) error
	ListDirectory(path string) ([]os.FileInfo, error)
}
