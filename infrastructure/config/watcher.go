package config

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const debounceDelay = 500 * time.Millisecond

// SelectorWatcher reloads the selector file into a ProfileStore when it
// changes on disk. A file that fails to load leaves the previous profile active.
type SelectorWatcher struct {
	path    string
	store   *ProfileStore
	logger  *zap.Logger
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	callbacks []func(SelectorProfile)
	stopCh    chan struct{}
	stopOnce  sync.Once
	done      chan struct{}
}

// NewSelectorWatcher starts watching path. The parent directory is watched so
// editors that replace the file on save are picked up too.
func NewSelectorWatcher(path string, store *ProfileStore, logger *zap.Logger) (*SelectorWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	w := &SelectorWatcher{
		path:    filepath.Clean(path),
		store:   store,
		logger:  logger,
		watcher: fsWatcher,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}

	go w.watchLoop()

	logger.Info("Selector hot reloading enabled", zap.String("file", path))
	return w, nil
}

// OnChange registers a callback run after each successful reload
func (w *SelectorWatcher) OnChange(fn func(SelectorProfile)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, fn)
}

// Stop stops watching and waits for the loop to exit
func (w *SelectorWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
	<-w.done
}

func (w *SelectorWatcher) watchLoop() {
	defer close(w.done)
	defer w.watcher.Close()

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug("Selector file changed",
				zap.String("file", event.Name),
				zap.String("operation", event.Op.String()),
			)

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(debounceDelay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			w.logger.Info("Stopping selector watcher")
			return
		}
	}
}

func (w *SelectorWatcher) reload() {
	profile, err := LoadSelectorProfile(w.path)
	if err != nil {
		w.logger.Error("Selector reload failed, keeping previous profile",
			zap.String("file", w.path),
			zap.Error(err),
		)
		return
	}

	if reflect.DeepEqual(profile, w.store.Current()) {
		w.logger.Debug("Selector profile unchanged after reload")
		return
	}

	w.store.Set(profile)

	w.mu.Lock()
	callbacks := append([]func(SelectorProfile){}, w.callbacks...)
	w.mu.Unlock()
	for _, fn := range callbacks {
		fn(profile)
	}

	w.logger.Info("Selector profile reloaded",
		zap.Int("titleSelectors", len(profile.TitleSelectors)),
		zap.Int("answerSelectors", len(profile.AnswerSelectors)),
	)
}
