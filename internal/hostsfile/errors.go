package hostsfile

import (
	"errors"
	"io/fs"
)

var (
	// ErrSizeExceeded is returned when the file or the supplied content is
	// larger than the configured ceiling.
	ErrSizeExceeded = errors.New("file exceeds the size limit")

	// ErrInvalidInput is returned for empty content passed to Write.
	ErrInvalidInput = errors.New("invalid content")

	// ErrClosed is returned by operations on a closed Engine.
	ErrClosed = errors.New("engine is closed")

	errBackupDirUnset = errors.New("backup directory is not configured")
)

// IsPermissionDenied reports whether err comes from the OS refusing access.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
