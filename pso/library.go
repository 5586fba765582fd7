// Package pso persists the pipeline-state-object cache across runs. The
// core never compiles a PSO itself - it only owns the opaque cached blob a
// PSO database reads at startup, and the debounced background writer that
// keeps that blob up to date as PSOs are recompiled.
package pso

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CacheFileName is the pipeline library's on-disk name, matching
// original_source/'s PSO_CACHE_FILE_NAME constant.
const CacheFileName = "PipelineLibrary.bpl"

// FlushDebounce is how long the writer waits after the most recent dirty
// mark before flushing, coalescing bursts of same-frame PSO compiles into
// one write - the behaviour original_source/ describes.
const FlushDebounce = 500 * time.Millisecond

// ErrNotFound is returned by Load when no cache file exists yet (first run,
// or the cache was deleted) - not a fatal condition, callers simply start
// with an empty library.
var ErrNotFound = errors.New("pso: no cache file present")

// Library owns the opaque pipeline-library blob's lifecycle: loading it once
// at startup and flushing it back to disk, off the render thread, whenever
// the caller marks it dirty.
type Library struct {
	dir  string
	path string

	mu      sync.Mutex
	blob    []byte
	dirty   bool
	timer   *time.Timer
	closed  bool
	onFlush func(err error) // test hook; nil in production
}

// NewLibrary creates a Library rooted at dataDir (the original's "Data"
// directory); the cache file itself lives at dataDir/CacheFileName.
func NewLibrary(dataDir string) *Library {
	return &Library{dir: dataDir, path: filepath.Join(dataDir, CacheFileName)}
}

// Load reads the cache file's current contents. Returns ErrNotFound (not
// wrapped further) if the file does not exist, so callers can distinguish
// "start empty" from a real I/O failure.
func (l *Library) Load() ([]byte, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pso: reading %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.blob = data
	l.mu.Unlock()
	return data, nil
}

// MarkDirty records a new in-memory blob (the PSO database's serialized
// form after compiling a new pipeline) and schedules a debounced flush.
// Calling MarkDirty again before the debounce elapses replaces the pending
// blob and restarts the timer, coalescing same-frame writes into one.
func (l *Library) MarkDirty(blob []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}

	l.blob = append([]byte(nil), blob...)
	l.dirty = true

	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(FlushDebounce, l.flush)
}

// flush writes the current blob to disk, creating the data directory if
// needed. Errors are reported through onFlush if a caller (normally only
// tests) registered one; production callers are expected to retry on the
// next MarkDirty rather than treating a transient write failure as fatal.
func (l *Library) flush() {
	l.mu.Lock()
	if !l.dirty || l.closed {
		l.mu.Unlock()
		return
	}
	blob := l.blob
	l.dirty = false
	hook := l.onFlush
	l.mu.Unlock()

	err := l.writeAtomic(blob)
	if hook != nil {
		hook(err)
	}
}

// writeAtomic writes blob to a temp file in dir then renames it over path,
// so a crash mid-write never leaves a truncated cache file behind.
func (l *Library) writeAtomic(blob []byte) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("pso: creating %s: %w", l.dir, err)
	}

	tmp, err := os.CreateTemp(l.dir, "."+CacheFileName+".*")
	if err != nil {
		return fmt.Errorf("pso: creating temp cache file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(blob); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("pso: writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pso: closing temp cache file: %w", err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("pso: renaming temp cache file into place: %w", err)
	}
	return nil
}

// FlushNow bypasses the debounce and writes synchronously - used at
// shutdown, where the caller needs the write to have landed before the
// process exits.
func (l *Library) FlushNow() error {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
	}
	blob := l.blob
	dirty := l.dirty
	l.dirty = false
	l.mu.Unlock()

	if !dirty {
		return nil
	}
	return l.writeAtomic(blob)
}

// Close stops any pending debounced flush without writing it - callers that
// want the final state persisted should call FlushNow first.
func (l *Library) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	if l.timer != nil {
		l.timer.Stop()
	}
}

// Equal reports whether blob matches the library's last loaded/written
// contents - used by tests and by callers deciding whether a recompiled PSO
// actually changed the serialized library.
func (l *Library) Equal(blob []byte) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return bytes.Equal(l.blob, blob)
}
