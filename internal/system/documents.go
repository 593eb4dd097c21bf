package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// DocumentsDir returns the user's documents directory.
// It prefers $XDG_DOCUMENTS_DIR, then ~/Documents if present, then the home directory.
func DocumentsDir(fs *FileSystem) (string, error) {
	if dir := os.Getenv("XDG_DOCUMENTS_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}

	docs := filepath.Join(home, "Documents")
	if ok, err := fs.DirectoryExists(docs); err == nil && ok {
		return docs, nil
	}
	return home, nil
}
