package hostsfile

import (
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Provenance tells the caller where Result.Data came from.
type Provenance string

const (
	ProvenanceFresh  Provenance = "fresh"
	ProvenanceCached Provenance = "cached"
)

// Result is the uniform envelope returned by every Engine operation.
type Result struct {
	Success    bool       `json:"success"`
	Data       string     `json:"data,omitempty"`
	Provenance Provenance `json:"provenance,omitempty"`
	Path       string     `json:"path,omitempty"`
	Error      string     `json:"error,omitempty"`

	// Err keeps the underlying error for errors.Is checks.
	Err error `json:"-"`
}

// Cached reports whether the data was served from memory.
func (r Result) Cached() bool {
	return r.Provenance == ProvenanceCached
}

func succeeded(data string, prov Provenance, path string) Result {
	return Result{Success: true, Data: data, Provenance: prov, Path: path}
}

func failed(err error) Result {
	return Result{Success: false, Error: err.Error(), Err: err}
}

// Event is published when the watcher confirms an external content change.
type Event struct {
	Content    string    `json:"content"`
	Hash       string    `json:"hash"`
	Generation uint64    `json:"generation"`
	Timestamp  time.Time `json:"timestamp"`
}

// Status is a point-in-time snapshot of the Engine.
type Status struct {
	Initialized bool   `json:"initialized"`
	Path        string `json:"path"`
	CacheSize   int    `json:"cacheSize"`
	CacheValid  bool   `json:"cacheValid"`
	CacheHash   string `json:"cacheHash,omitempty"`
	Generation  uint64 `json:"generation"`
	Watching    bool   `json:"watching"`
	WindowCount int    `json:"windowCount"`
}

// Fingerprint returns the xxhash64 of content as 16 hex digits.
func Fingerprint(content string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(content))
}
