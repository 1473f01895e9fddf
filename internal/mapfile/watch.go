package mapfile

import (
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce drops repeated events for one file within this window.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changed map files. Editors often write a file several
// times per save; events for the same file are debounced.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool // single watched files
	dirs     map[string]bool // directories reporting every map file
	debounce time.Duration
	log      *log.Logger

	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

// WatchOptions configures a Watcher.
type WatchOptions struct {
	Debounce time.Duration
	Logger   *log.Logger
}

// NewWatcher watches paths. A directory reports every supported map file
// in it; a file reports only itself. The file's directory is watched so
// editors that replace the file on save keep being followed.
func NewWatcher(opts WatchOptions, paths ...string) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		debounce: opts.Debounce,
		log:      opts.Logger,
		Events:   make(chan string, 16),
		Errors:   make(chan error, 1),
		closeCh:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	added := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, err
		}
		if Supported(abs) {
			w.files[abs] = true
			abs = filepath.Dir(abs)
		} else {
			w.dirs[abs] = true
		}
		if added[abs] {
			continue
		}
		if err := fw.Add(abs); err != nil {
			_ = fw.Close()
			return nil, err
		}
		added[abs] = true
	}

	go w.run()
	return w, nil
}

// Close stops the watcher and closes its channels.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.done)
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.wants(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < w.debounce {
				continue
			}
			last[event.Name] = now
			w.log.Debug("map file changed", "file", event.Name, "op", event.Op.String())
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
				w.log.Warn("map watcher error dropped", "err", err)
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) wants(name string) bool {
	if !Supported(name) {
		return false
	}
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	return w.files[abs] || w.dirs[filepath.Dir(abs)]
}
