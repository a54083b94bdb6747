package settings

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marketpulse/core/pkg/schedule"
)

// Watch observes the settings file and re-renders the scheduler file
// (through the installed hook) when the document is edited outside the
// API. Events are debounced so editors that write in several steps
// trigger a single reload. Watch blocks until ctx is done.
func (m *Manager) Watch(ctx context.Context) error {
	dir := filepath.Dir(m.path)
	file := filepath.Base(m.path)

	// The document may not exist yet on first start.
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	m.log.Debug().
		Str("action", "settings_watch_start").
		Str("dir", dir).
		Str("file", file).
		Msg("Watching settings file")

	// debounce to avoid reacting to partial writes
	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	reload := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(250*time.Millisecond, m.reloadSchedule)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.EqualFold(filepath.Base(ev.Name), file) {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if err != nil {
				m.log.Warn().
					Err(err).
					Str("action", "settings_watch_error").
					Msg("Settings watcher error")
			}
		}
	}
}

// reloadSchedule re-reads the document and re-renders the scheduler
// file. External edits go through the same merge gate as an API write,
// so an invalid expression edited into the file never reaches the
// scheduler file.
func (m *Manager) reloadSchedule() {
	m.mu.Lock()
	raw := entriesFromDoc(m.readRaw())
	hook := m.hook
	m.mu.Unlock()

	if hook == nil {
		return
	}

	entries, err := schedule.Merge(nil, raw)
	if err != nil {
		m.log.Warn().
			Err(err).
			Str("action", "schedule_reload_rejected").
			Msg("Ignoring externally edited schedule with invalid entries")
		return
	}

	if err := hook(entries); err != nil {
		m.log.Warn().
			Err(err).
			Str("action", "schedule_rerender_failed").
			Msg("Could not re-render schedule after settings change")
		return
	}
	m.log.Info().
		Str("action", "schedule_rerendered").
		Int("entry_count", len(entries)).
		Msg("Schedule re-rendered after settings change")
}
