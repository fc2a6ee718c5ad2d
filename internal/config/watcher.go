package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vyrodovalexey/avamap/internal/observability"
)

// ConfigCallback is called with every successfully reloaded document.
type ConfigCallback func(*Config)

// ErrorCallback is called when a reload fails.
type ErrorCallback func(error)

// Watcher watches a RuleSet document and its includes and reloads the
// document when any of them changes.
type Watcher struct {
	path          string
	watcher       *fsnotify.Watcher
	callback      ConfigCallback
	errorCallback ErrorCallback
	logger        observability.Logger
	loaderOpts    []LoaderOption
	debounceDelay time.Duration

	mu         sync.RWMutex
	lastConfig *Config
	files      map[string]bool
	dirs       map[string]bool
	running    bool

	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// WatcherOption is a functional option for configuring the watcher.
type WatcherOption func(*Watcher)

// WithDebounceDelay sets the debounce delay for file changes.
func WithDebounceDelay(delay time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.debounceDelay = delay
	}
}

// WithLogger sets the logger for the watcher.
func WithLogger(logger observability.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// WithErrorCallback sets the error callback for the watcher.
func WithErrorCallback(callback ErrorCallback) WatcherOption {
	return func(w *Watcher) {
		w.errorCallback = callback
	}
}

// WithLoaderOptions configures the loader used for every (re)load.
func WithLoaderOptions(opts ...LoaderOption) WatcherOption {
	return func(w *Watcher) {
		w.loaderOpts = append(w.loaderOpts, opts...)
	}
}

// NewWatcher creates a new document watcher.
func NewWatcher(path string, callback ConfigCallback, opts ...WatcherOption) (*Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		path:          absPath,
		watcher:       fsWatcher,
		callback:      callback,
		debounceDelay: 100 * time.Millisecond,
		logger:        observability.NopLogger(),
		files:         make(map[string]bool),
		dirs:          make(map[string]bool),
		stopCh:        make(chan struct{}),
		stoppedCh:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = observability.NopLogger()
	}

	return w, nil
}

// Start loads and validates the document, then watches it until ctx is done
// or Stop is called. The initial document does not trigger the callback.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	config, files, err := w.load()
	if err != nil {
		return err
	}

	if err := w.track(files); err != nil {
		// Nothing is watching yet, so release the watcher here; Stop has
		// nothing left to do.
		_ = w.watcher.Close()
		return err
	}

	w.mu.Lock()
	w.lastConfig = config
	w.running = true
	w.mu.Unlock()

	w.logger.Info("started watching rule set",
		observability.String("path", w.path),
		observability.Int("files", len(files)),
	)

	go w.watch(ctx)

	return nil
}

// Stop stops watching and releases the underlying watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.stoppedCh

	return w.watcher.Close()
}

// GetLastConfig returns the last successfully loaded document.
func (w *Watcher) GetLastConfig() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.lastConfig
}

// ForceReload reloads immediately and calls the callback on success.
func (w *Watcher) ForceReload() error {
	config, files, err := w.load()
	if err != nil {
		return err
	}
	w.apply(config, files)
	return nil
}

func (w *Watcher) load() (*Config, []string, error) {
	loader := NewLoader(w.loaderOpts...)
	config, err := loader.Load(w.path)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateConfig(config); err != nil {
		return nil, nil, err
	}
	return config, loader.Files(), nil
}

func (w *Watcher) apply(config *Config, files []string) {
	w.mu.Lock()
	w.lastConfig = config
	w.mu.Unlock()

	if err := w.track(files); err != nil {
		w.handleWatchError(err)
	}

	if w.callback != nil {
		w.callback(config)
	}
}

// track watches the directories of files. Editors often replace files
// instead of writing them, so directories are watched rather than files.
func (w *Watcher) track(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]bool, len(files))
	for _, f := range files {
		w.files[filepath.Clean(f)] = true
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
		w.dirs[dir] = true
	}
	return nil
}

func (w *Watcher) isTracked(name string) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.files[filepath.Clean(name)]
}

// watch is the main watch loop.
func (w *Watcher) watch(ctx context.Context) {
	defer close(w.stoppedCh)

	var debounceTimer *time.Timer
	var debounceCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("rule set watcher stopped due to context cancellation")
			return

		case <-w.stopCh:
			w.logger.Info("rule set watcher stopped")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			debounceTimer, debounceCh = w.handleFileEvent(event, debounceTimer, debounceCh)

		case <-debounceCh:
			debounceCh = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.handleWatchError(err)
		}
	}
}

// handleFileEvent restarts the debounce timer for writes to tracked files.
func (w *Watcher) handleFileEvent(
	event fsnotify.Event,
	debounceTimer *time.Timer,
	debounceCh <-chan time.Time,
) (timer *time.Timer, ch <-chan time.Time) {
	if !w.isTracked(event.Name) {
		return debounceTimer, debounceCh
	}

	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return debounceTimer, debounceCh
	}

	w.logger.Debug("rule set file changed",
		observability.String("path", event.Name),
		observability.String("op", event.Op.String()),
	)

	if debounceTimer != nil {
		debounceTimer.Stop()
	}
	debounceTimer = time.NewTimer(w.debounceDelay)
	return debounceTimer, debounceTimer.C
}

// handleWatchError handles watcher errors.
func (w *Watcher) handleWatchError(err error) {
	w.logger.Error("rule set watcher error",
		observability.Error(err),
	)
	if w.errorCallback != nil {
		w.errorCallback(err)
	}
}

// reload attempts to reload the document, keeping the previous one on
// failure.
func (w *Watcher) reload() {
	w.logger.Info("reloading rule set",
		observability.String("path", w.path),
	)

	config, files, err := w.load()
	if err != nil {
		w.logger.Error("failed to reload rule set",
			observability.Error(err),
		)
		if w.errorCallback != nil {
			w.errorCallback(err)
		}
		return
	}

	w.apply(config, files)
	w.logger.Info("rule set reloaded",
		observability.String("name", config.Metadata.Name),
		observability.Int("rules", len(config.Spec.Rules)),
	)
}
