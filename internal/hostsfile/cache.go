package hostsfile

import "sync"

// ReconcileOutcome is the result of offering watcher-read content to the cache.
type ReconcileOutcome int

const (
	// ReconcileApplied means the content differed and replaced the cache.
	ReconcileApplied ReconcileOutcome = iota
	// ReconcileUnchanged means the content matched the cache byte for byte.
	ReconcileUnchanged
	// ReconcileSuperseded means new content was stored while reading.
	ReconcileSuperseded
	// ReconcileBaseline means no content was known yet; the read content
	// became the baseline without counting as a change.
	ReconcileBaseline
)

func (o ReconcileOutcome) String() string {
	switch o {
	case ReconcileApplied:
		return "applied"
	case ReconcileUnchanged:
		return "unchanged"
	case ReconcileSuperseded:
		return "superseded"
	case ReconcileBaseline:
		return "baseline"
	default:
		return "unknown"
	}
}

// Cache is the single authoritative copy of the file content.
// Every mutation bumps the generation counter. Invalidate hides the content
// from Get but keeps it as the last known content for Reconcile.
type Cache struct {
	mu         sync.RWMutex
	content    string
	valid      bool
	known      bool
	generation uint64
	// contentGen is the generation of the last mutation that stored content.
	contentGen uint64
}

// Get returns the content and whether it is valid.
func (c *Cache) Get() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return "", false
	}
	return c.content, true
}

// Generation returns the current mutation counter.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Len returns the byte length of valid content, or 0.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.valid {
		return 0
	}
	return len(c.content)
}

// Set stores content unconditionally and returns the new generation.
func (c *Cache) Set(content string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store(content)
}

// store must be called with mu held.
func (c *Cache) store(content string) uint64 {
	c.content = content
	c.valid = true
	c.known = true
	c.generation++
	c.contentGen = c.generation
	return c.generation
}

// Invalidate drops the content so the next read goes to disk.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.generation++
}

// SetIfCurrent stores content only if no mutation happened since seen.
func (c *Cache) SetIfCurrent(content string, seen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != seen {
		return false
	}
	c.store(content)
	return true
}

// Reconcile compares content against the last known content as of
// generation seen. Content stored since seen wins over the read. An
// invalidation since seen does not: the read is still compared and, if it
// differs, applied. With nothing known yet the read becomes the baseline.
func (c *Cache) Reconcile(content string, seen uint64) (ReconcileOutcome, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.contentGen > seen {
		return ReconcileSuperseded, c.generation
	}
	if !c.known {
		return ReconcileBaseline, c.store(content)
	}
	if c.content == content {
		return ReconcileUnchanged, c.generation
	}
	return ReconcileApplied, c.store(content)
}
