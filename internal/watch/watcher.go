// Package watch reports edits made to the data file by other programs, such
// as a text editor or a sync client, while gt is running.
package watch

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long the file must stay quiet before a change is
// reported. Editors and atomic writers touch a file several times per save.
const DefaultSettle = 200 * time.Millisecond

// EventOp represents the type of file system operation.
type EventOp int

const (
	// OpModify indicates the file was created or rewritten.
	OpModify EventOp = iota
	// OpDelete indicates the file was removed or renamed away.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op EventOp) String() string {
	switch op {
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// ChangeEvent is one settled change to the watched file.
type ChangeEvent struct {
	Path string
	Op   EventOp
	Time time.Time
}

// Filter decides whether a settled modification is reported. The file
// backend's ChangedExternally fits here to skip gt's own writes.
type Filter func() bool

// FileWatcher watches a single file through its parent directory, so the
// watch survives the file being replaced by rename.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	events  chan ChangeEvent
	errors  chan error
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	path    string
	settle  time.Duration
	filter  Filter
}

// NewFileWatcher creates a new FileWatcher instance.
// The watcher must be started with Start() before it will emit events.
func NewFileWatcher(settle time.Duration, filter Filter) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if settle <= 0 {
		settle = DefaultSettle
	}

	return &FileWatcher{
		watcher: watcher,
		events:  make(chan ChangeEvent, 16),
		errors:  make(chan error, 10),
		done:    make(chan struct{}),
		settle:  settle,
		filter:  filter,
	}, nil
}

// Start begins watching path. Its directory must exist; the file need not.
func (fw *FileWatcher) Start(path string) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.running {
		return fmt.Errorf("watcher already running")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	fw.path = abs

	if err := fw.watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	fw.running = true
	fw.wg.Add(1)
	go fw.processEvents(fw.done)

	return nil
}

// Stop stops watching and blocks until the event loop has exited.
// It is safe to call on a watcher that never started.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.done == nil {
		fw.mu.Unlock()
		return nil
	}
	wasRunning := fw.running
	fw.running = false
	done := fw.done
	fw.done = nil
	fw.mu.Unlock()

	close(done)

	if err := fw.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}

	if wasRunning {
		fw.wg.Wait()
	}

	close(fw.events)
	close(fw.errors)

	return nil
}

// Events returns the channel of settled changes.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Events() <-chan ChangeEvent {
	return fw.events
}

// Errors returns the channel that emits error notifications.
// This channel is closed when the watcher is stopped.
func (fw *FileWatcher) Errors() <-chan error {
	return fw.errors
}

// IsRunning returns true if the watcher is currently running.
func (fw *FileWatcher) IsRunning() bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.running
}

// processEvents collapses bursts of raw events on the file into one
// ChangeEvent once the file has been quiet for the settle interval.
func (fw *FileWatcher) processEvents(done <-chan struct{}) {
	defer fw.wg.Done()

	timer := time.NewTimer(fw.settle)
	timer.Stop()
	defer timer.Stop()

	var pending *EventOp

	for {
		select {
		case <-done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			op, ok := fw.convertEvent(event)
			if !ok {
				continue
			}
			pending = &op
			timer.Reset(fw.settle)

		case <-timer.C:
			if pending == nil {
				continue
			}
			op := *pending
			pending = nil
			if op == OpModify && fw.filter != nil && !fw.filter() {
				continue
			}
			select {
			case fw.events <- ChangeEvent{Path: fw.path, Op: op, Time: time.Now()}:
			case <-done:
				return
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			select {
			case fw.errors <- err:
			case <-done:
				return
			}
		}
	}
}

// convertEvent maps an fsnotify event on the watched file to an EventOp.
// Events for other files in the directory, and chmod, are ignored.
func (fw *FileWatcher) convertEvent(event fsnotify.Event) (EventOp, bool) {
	abs, err := filepath.Abs(event.Name)
	if err != nil || abs != fw.path {
		return 0, false
	}

	switch {
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		return OpModify, true
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return OpDelete, true
	default:
		return 0, false
	}
}
