package hostsfile

// DefaultSizeLimit is the ceiling applied to reads and writes (1 MiB).
const DefaultSizeLimit int64 = 1 << 20

// FileSizer reports a file's size without reading it.
type FileSizer interface {
	FileSize(path string) (int64, error)
}

// SizeAcceptable reports whether the file at path is at most limit bytes.
// Any stat failure counts as unacceptable.
func SizeAcceptable(fs FileSizer, path string, limit int64) bool {
	size, err := fs.FileSize(path)
	if err != nil {
		return false
	}
	return size <= limit
}

func contentAcceptable(content string, limit int64) bool {
	return int64(len(content)) <= limit
}
