package config

import (
	"os"
	"sync"
	"time"
)

// fileState is what a poll compares: a file that disappears or reappears
// counts as a change.
type fileState struct {
	modTime time.Time
	size    int64
	exists  bool
}

// Watcher polls a set of files and calls OnChange once the files have
// been quiet for the debounce interval after a change.
type Watcher struct {
	paths        []string
	pollInterval time.Duration
	debounce     time.Duration
	states       map[string]fileState
	onChange     func(changed []string)
	stopCh       chan struct{}
	stoppedCh    chan struct{}
	mu           sync.Mutex
	running      bool
}

// WatcherConfig holds watcher configuration.
type WatcherConfig struct {
	Paths        []string
	PollInterval time.Duration // Default: 100ms
	Debounce     time.Duration // Default: 200ms
	// OnChange receives the paths that changed since the last call.
	OnChange func(changed []string)
}

// NewWatcher creates a watcher over cfg.Paths. The current state of each
// file is the baseline.
func NewWatcher(cfg *WatcherConfig) (*Watcher, error) {
	if len(cfg.Paths) == 0 {
		return nil, ErrMissingConfigFile
	}
	if cfg.OnChange == nil {
		return nil, ErrMissingOnChange
	}

	pollInterval := cfg.PollInterval
	if pollInterval == 0 {
		pollInterval = 100 * time.Millisecond
	}
	debounce := cfg.Debounce
	if debounce == 0 {
		debounce = 200 * time.Millisecond
	}

	w := &Watcher{
		paths:        append([]string(nil), cfg.Paths...),
		pollInterval: pollInterval,
		debounce:     debounce,
		states:       make(map[string]fileState, len(cfg.Paths)),
		onChange:     cfg.OnChange,
		stopCh:       make(chan struct{}),
		stoppedCh:    make(chan struct{}),
	}
	for _, p := range w.paths {
		w.states[p] = stat(p)
	}
	return w, nil
}

// Start begins watching. Calling Start on a running watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	go w.watchLoop()
}

// Stop stops watching and waits for the loop to exit. A pending debounced
// change is dropped.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh
}

// IsRunning returns true if the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	defer close(w.stoppedCh)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	pending := make(map[string]bool)
	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case <-ticker.C:
			changed := w.poll()
			if len(changed) == 0 {
				continue
			}
			for _, p := range changed {
				pending[p] = true
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.NewTimer(w.debounce)
			debounceCh = debounceTimer.C

		case <-debounceCh:
			if len(pending) > 0 {
				changed := make([]string, 0, len(pending))
				for _, p := range w.paths {
					if pending[p] {
						changed = append(changed, p)
					}
				}
				pending = make(map[string]bool)
				w.onChange(changed)
			}
			debounceTimer = nil
			debounceCh = nil
		}
	}
}

// poll returns the paths whose state differs from the last poll.
func (w *Watcher) poll() []string {
	var changed []string
	for _, p := range w.paths {
		st := stat(p)
		if st != w.states[p] {
			w.states[p] = st
			changed = append(changed, p)
		}
	}
	return changed
}

func stat(path string) fileState {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), exists: true}
}
