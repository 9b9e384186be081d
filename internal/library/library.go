// Package library loads the static whisky reference library used to
// broaden search results beyond the group's own session history.
package library

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/freemaltson/whiskynights/internal/log"
)

// Entry is one reference whisky. Entries are immutable: the library is
// never written by this service.
type Entry struct {
	Whisky string `json:"whisky"`
	Region string `json:"region"`
	Type   string `json:"type"`
}

// Library serves the current entry set and refreshes it when the backing
// file changes on disk.
type Library struct {
	path    string
	mu      sync.RWMutex
	entries []Entry
	logger  zerolog.Logger
}

// Open loads the library at path. A missing or unreadable file yields an
// empty library: reference data is a nice-to-have, not a dependency.
func Open(path string) *Library {
	l := &Library{
		path:   path,
		logger: log.WithComponent("library"),
	}
	l.reload()
	return l
}

// Entries returns a copy of the current entry set.
func (l *Library) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

func (l *Library) reload() {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !os.IsNotExist(err) {
			l.logger.Warn().Err(err).Str("path", l.path).Msg("failed to read library file")
		}
		l.set(nil)
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		l.logger.Warn().Err(err).Str("path", l.path).Msg("failed to decode library file")
		l.set(nil)
		return
	}
	l.set(entries)
	l.logger.Info().Int("entries", len(entries)).Msg("library loaded")
}

func (l *Library) set(entries []Entry) {
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
}

// Watch reloads the library whenever its file is rewritten. It blocks until
// ctx is cancelled; callers run it in a goroutine. The watch is placed on
// the parent directory so atomic rename-style rewrites are picked up.
func (l *Library) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		return err
	}

	target := filepath.Clean(l.path)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			l.logger.Debug().Str("op", event.Op.String()).Msg("library file changed, reloading")
			l.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn().Err(err).Msg("library watcher error")
		}
	}
}
