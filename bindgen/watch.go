package bindgen

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/starbind/errors"
	"github.com/teranos/starbind/logger"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// Watch calls fn once changes to Go sources in dirs have been quiet for
// debounce. Writes to the generated file named output are ignored, so fn
// regenerating bindings does not retrigger itself. Watch blocks until ctx
// is done.
func Watch(ctx context.Context, dirs []string, output string, debounce time.Duration, fn func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if output == "" {
		output = DefaultOutput
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer w.Close()

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			return errors.Wrapf(err, "failed to watch %s", dir)
		}
		logger.Debugw("Watching directory", logger.FieldPath, dir)
	}

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, output) {
				continue
			}
			logger.Debugw("Source changed", logger.FieldFile, event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			fn()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// relevant keeps events that can change what a package binds: Go sources
// other than tests and the generated output.
func relevant(event fsnotify.Event, output string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	if base == output || filepath.Ext(base) != ".go" || strings.HasSuffix(base, "_test.go") {
		return false
	}
	return !strings.HasPrefix(base, ".")
}
