package system

import (
	"path/filepath"
	"runtime"
	"sync"
)

const (
	// WindowsHostsPath is the hosts file location on Windows.
	WindowsHostsPath = `C:\Windows\System32\drivers\etc\hosts`
	// UnixHostsPath is the hosts file location everywhere else.
	UnixHostsPath = "/etc/hosts"
)

// HostsPathFor returns the hosts file path for the given GOOS value.
// Unknown systems get the Unix path.
func HostsPathFor(goos string) string {
	if goos == "windows" {
		return WindowsHostsPath
	}
	return UnixHostsPath
}

// PathResolver resolves the managed file path once and memoizes it.
type PathResolver struct {
	override string
	goos     string

	once sync.Once
	path string
}

// NewPathResolver returns a resolver for the running platform.
// A non-empty override wins over the platform default.
func NewPathResolver(override string) *PathResolver {
	return &PathResolver{override: override, goos: runtime.GOOS}
}

// newPathResolverFor is used by tests to pin the platform.
func newPathResolverFor(goos, override string) *PathResolver {
	return &PathResolver{override: override, goos: goos}
}

// Resolve returns the path. Later calls return the first result.
func (r *PathResolver) Resolve() string {
	r.once.Do(func() {
		if r.override != "" {
			r.path = filepath.Clean(r.override)
			return
		}
		r.path = HostsPathFor(r.goos)
	})
	return r.path
}
