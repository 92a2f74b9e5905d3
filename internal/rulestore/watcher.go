package rulestore

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Watcher monitors a rules file for out-of-band edits and calls a callback
// when the content changes. It uses polling (not fsnotify) to keep
// dependencies minimal; a dictionary edit becoming active a few seconds
// later is fine.
type Watcher struct {
	path     string
	interval time.Duration
	onChange func(text string)

	mu       sync.Mutex
	done     chan struct{}
	stopOnce sync.Once

	// last known file state for change detection
	lastMtime time.Time
	lastHash  [sha256.Size]byte
}

// WatcherOption configures a [Watcher].
type WatcherOption func(*Watcher)

// WithInterval sets the polling interval. The default is 5 seconds.
func WithInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWatcher creates a rules file watcher and starts polling in a background
// goroutine. onChange receives the new rule text; it is not called for the
// initial content, only for subsequent edits. A file that does not exist yet
// is treated as empty text and watched for creation.
func NewWatcher(path string, onChange func(text string), opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{
		path:     path,
		interval: 5 * time.Second,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	_, hash, mtime, err := w.readAndHash()
	if err != nil {
		return nil, fmt.Errorf("rulestore: watcher initial read: %w", err)
	}
	w.lastHash = hash
	w.lastMtime = mtime

	go w.poll()
	return w, nil
}

// Stop stops the file watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
	})
}

// poll runs in a background goroutine, checking the rules file periodically.
func (w *Watcher) poll() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.check()
		}
	}
}

// check re-reads the rules file and invokes onChange when its content hash
// differs from the last observed state.
func (w *Watcher) check() {
	// Quick mtime check first to avoid hashing unchanged files.
	info, err := os.Stat(w.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("rules watcher: cannot stat file", "path", w.path, "err", err)
		}
		return
	}

	w.mu.Lock()
	mtime := w.lastMtime
	w.mu.Unlock()

	if info.ModTime().Equal(mtime) {
		return
	}

	text, hash, newMtime, err := w.readAndHash()
	if err != nil {
		slog.Warn("rules watcher: failed to read file", "path", w.path, "err", err)
		return
	}

	w.mu.Lock()
	if hash == w.lastHash {
		// File was touched but content is identical.
		w.lastMtime = newMtime
		w.mu.Unlock()
		return
	}
	w.lastHash = hash
	w.lastMtime = newMtime
	w.mu.Unlock()

	slog.Info("rules watcher: dictionary file changed", "path", w.path)

	if w.onChange != nil {
		w.onChange(text)
	}
}

// readAndHash reads the rules file and returns its content alongside the
// SHA-256 hash and modification time. A missing file reads as empty text
// with a zero mtime.
func (w *Watcher) readAndHash() (string, [sha256.Size]byte, time.Time, error) {
	var zeroHash [sha256.Size]byte

	f, err := os.Open(w.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", sha256.Sum256(nil), time.Time{}, nil
	}
	if err != nil {
		return "", zeroHash, time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", zeroHash, time.Time{}, err
	}

	data, err := os.ReadFile(w.path)
	if err != nil {
		return "", zeroHash, time.Time{}, err
	}

	return string(data), sha256.Sum256(data), info.ModTime(), nil
}
