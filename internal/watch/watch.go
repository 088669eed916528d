// Package watch re-runs a transform whenever a matching file in a
// directory is created or rewritten. Events are debounced per file so an
// editor's save burst triggers one run.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Handler processes one changed file. Calls are serialized.
type Handler func(ctx context.Context, path string)

// ignoredPrefixes are names the batch pipeline itself produces.
var ignoredPrefixes = []string{"encoded_", "decoded_", ".cloak-"}

// Ignored reports whether a file name is a pipeline output or temp file.
func Ignored(name string) bool {
	for _, p := range ignoredPrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// Watcher watches a single directory, non-recursively.
type Watcher struct {
	dir      string
	ext      string
	debounce time.Duration
	fs       *fsnotify.Watcher

	// OnError receives watcher errors; nil drops them.
	OnError func(error)
}

// New starts watching dir for files whose name ends in ext exactly.
func New(dir, ext string, debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	return &Watcher{
		dir:      dir,
		ext:      ext,
		debounce: debounce,
		fs:       fw,
	}, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Matches reports whether path should trigger the handler.
func (w *Watcher) Matches(path string) bool {
	name := filepath.Base(path)
	if Ignored(name) {
		return false
	}
	return strings.HasSuffix(name, w.ext)
}

// Run dispatches debounced events to handle until ctx is done or the
// watcher is closed. It closes the underlying watcher on return.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	defer w.fs.Close()

	fired := make(chan string)
	done := make(chan struct{})
	timers := make(map[string]*time.Timer)
	defer func() {
		close(done)
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !w.Matches(event.Name) {
				continue
			}
			path := event.Name
			if t, ok := timers[path]; ok {
				t.Stop()
			}
			timers[path] = time.AfterFunc(w.debounce, func() {
				select {
				case fired <- path:
				case <-done:
				}
			})

		case path := <-fired:
			delete(timers, path)
			handle(ctx, path)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

// Close stops the watcher; a running Run returns.
func (w *Watcher) Close() error {
	return w.fs.Close()
}
