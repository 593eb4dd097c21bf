// Package hostsfile keeps an in-memory copy of a single privileged file in
// sync with disk.
//
// An Engine owns the cache, the change watcher and the resolved path. Every
// operation returns a Result; nothing panics or escapes as an error past the
// Engine. Disk access goes through a bounded linear-backoff retry, and the
// watcher publishes an Event only when the file content actually changed.
package hostsfile
