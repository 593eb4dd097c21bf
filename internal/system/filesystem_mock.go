package system

import (
	"os"
	"sync"

	"github.com/spf13/afero"
)

// MockFileSystem is an in-memory FileSystem for testing purposes.
// It counts calls and can be told to fail the next N reads or writes.
type MockFileSystem struct {
	*FileSystem

	mu         sync.Mutex
	reads      int
	writes     int
	stats      int
	failReads  int
	readErr    error
	failWrites int
	writeErr   error
	statErr    error
	onRead     func(path string)
}

// NewMockFileSystem creates a new MockFileSystem over afero.MemMapFs.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{FileSystem: NewFileSystemWithFs(afero.NewMemMapFs())}
}

// Seed writes a file without touching the counters.
func (m *MockFileSystem) Seed(path string, content []byte) {
	_ = afero.WriteFile(m.fs, path, content, 0o644)
}

// Content returns the stored bytes without touching the counters.
func (m *MockFileSystem) Content(path string) ([]byte, error) {
	return afero.ReadFile(m.fs, path)
}

// FailNextReads makes the next n ReadFile calls return err.
func (m *MockFileSystem) FailNextReads(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failReads = n
	m.readErr = err
}

// FailNextWrites makes the next n WriteFile calls return err.
func (m *MockFileSystem) FailNextWrites(n int, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = n
	m.writeErr = err
}

// FailStat makes every FileSize call return err until cleared with nil.
func (m *MockFileSystem) FailStat(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statErr = err
}

// OnRead registers a hook that runs at the start of every ReadFile call.
func (m *MockFileSystem) OnRead(fn func(path string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRead = fn
}

// ReadFile counts the call and applies any pending read failure.
func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	m.mu.Lock()
	m.reads++
	hook := m.onRead
	var err error
	if m.failReads > 0 {
		m.failReads--
		err = m.readErr
	}
	m.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	if err != nil {
		return nil, err
	}
	return m.FileSystem.ReadFile(path)
}

// WriteFile counts the call and applies any pending write failure.
func (m *MockFileSystem) WriteFile(path string, content []byte, perms os.FileMode) error {
	m.mu.Lock()
	m.writes++
	var err error
	if m.failWrites > 0 {
		m.failWrites--
		err = m.writeErr
	}
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return m.FileSystem.WriteFile(path, content, perms)
}

// FileSize counts the call and applies any stat failure.
func (m *MockFileSystem) FileSize(path string) (int64, error) {
	m.mu.Lock()
	m.stats++
	err := m.statErr
	m.mu.Unlock()

	if err != nil {
		return 0, err
	}
	return m.FileSystem.FileSize(path)
}

// Reads returns the number of ReadFile calls.
func (m *MockFileSystem) Reads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads
}

// Writes returns the number of WriteFile calls.
func (m *MockFileSystem) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Stats returns the number of FileSize calls.
func (m *MockFileSystem) Stats() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats
}

// DiskOps returns the total number of counted calls.
func (m *MockFileSystem) DiskOps() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads + m.writes + m.stats
}
