package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/forgeflow/internal/infrastructure/storage"
)

// ManifestWatcher watches the .forgeflow directory and fires a callback
// when the workflow manifest is edited outside the running process. Events
// are debounced so an editor's write-then-rename dance reloads once.
type ManifestWatcher struct {
	watcher  *fsnotify.Watcher
	dir      string
	debounce time.Duration
	onChange func(filename string)
}

// NewManifestWatcher creates a watcher over the repository's .forgeflow
// directory.
func NewManifestWatcher(repo *storage.FilesystemRepository, debounce time.Duration, onChange func(filename string)) (*ManifestWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if debounce == 0 {
		debounce = 500 * time.Millisecond
	}
	return &ManifestWatcher{
		watcher:  w,
		dir:      repo.Dir(),
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// watchedFile reports whether a changed path is one of the manifests this
// process cares about.
func watchedFile(path string) bool {
	switch filepath.Base(path) {
	case storage.WorkflowFile, storage.MissionFile:
		return true
	}
	return false
}

// Run starts the event loop. It blocks until the context is cancelled.
func (w *ManifestWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var lastFile string
	debouncer := NewDebouncer(w.debounce, func() {
		if w.onChange != nil {
			w.onChange(lastFile)
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			if !watchedFile(event.Name) {
				continue
			}

			lastFile = filepath.Base(event.Name)
			debouncer.Trigger()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}
