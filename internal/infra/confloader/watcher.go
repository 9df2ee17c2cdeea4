package confloader

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultSettle is how long a file must be quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultSettle = 100 * time.Millisecond

// Watcher reports changes to configuration files, one notification per
// burst of writes.
type Watcher struct {
	fs     *fsnotify.Watcher
	logger *slog.Logger
	settle time.Duration
	done   chan struct{}
	stop   sync.Once

	mu       sync.Mutex
	files    map[string]*time.Timer
	onChange []func(string)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithWatcherLogger sets the logger for the watcher.
func WithWatcherLogger(logger *slog.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithSettle overrides DefaultSettle. Zero reports every event.
func WithSettle(d time.Duration) WatcherOption {
	return func(w *Watcher) { w.settle = d }
}

// NewWatcher creates a watcher. Call Watch, then StartAsync.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fw,
		logger: slog.Default(),
		settle: DefaultSettle,
		done:   make(chan struct{}),
		files:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch adds path. Its directory is watched so that editors which save by
// renaming a temp file over the original are noticed.
func (w *Watcher) Watch(path string) error {
	path = filepath.Clean(path)
	if err := w.fs.Add(filepath.Dir(path)); err != nil {
		return err
	}
	w.mu.Lock()
	if _, ok := w.files[path]; !ok {
		w.files[path] = nil
	}
	w.mu.Unlock()
	w.logger.Debug("watching config file", "path", path)
	return nil
}

// OnChange registers fn. It runs on a timer goroutine.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	w.onChange = append(w.onChange, fn)
	w.mu.Unlock()
}

// StartAsync processes events in a goroutine until Stop.
func (w *Watcher) StartAsync() {
	go w.run()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				w.touch(filepath.Clean(ev.Name))
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-w.done:
			return
		}
	}
}

// touch (re)arms the settle timer for a watched path.
func (w *Watcher) touch(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t, ok := w.files[path]
	if !ok {
		return
	}
	if t != nil {
		t.Stop()
	}
	w.files[path] = time.AfterFunc(w.settle, func() { w.fire(path) })
}

func (w *Watcher) fire(path string) {
	select {
	case <-w.done:
		return
	default:
	}
	w.mu.Lock()
	fns := append([]func(string){}, w.onChange...)
	w.mu.Unlock()

	w.logger.Debug("config file changed", "path", path)
	for _, fn := range fns {
		fn(path)
	}
}

// Stop ends event processing and cancels pending notifications. It is
// safe to call more than once.
func (w *Watcher) Stop() error {
	var err error
	w.stop.Do(func() {
		close(w.done)
		w.mu.Lock()
		for _, t := range w.files {
			if t != nil {
				t.Stop()
			}
		}
		w.mu.Unlock()
		err = w.fs.Close()
	})
	return err
}
