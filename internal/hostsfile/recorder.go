package hostsfile

import "time"

// Recorder receives engine instrumentation. Implementations must be safe
// for concurrent use.
type Recorder interface {
	ObserveOperation(op string, d time.Duration, err error)
	ObserveRetry(op string, attempt int, err error)
	ObserveCacheLookup(hit bool)
	ObserveReconcile(outcome string)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) ObserveOperation(string, time.Duration, error) {}
func (NopRecorder) ObserveRetry(string, int, error)               {}
func (NopRecorder) ObserveCacheLookup(bool)                       {}
func (NopRecorder) ObserveReconcile(string)                       {}
