package seed

import (
	"context"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"travelbot/internal/repositories"
)

const defaultDebounce = 500 * time.Millisecond

// Watcher re-imports a dataset table when its file is written or replaced.
type Watcher struct {
	importer *Importer
	debounce time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	timers  map[string]*pending
	watcher *fsnotify.Watcher
	done    chan struct{}
	stop    sync.Once

	// onImport is called after each re-import; tests hook it.
	onImport func(table string, rows int, err error)
}

func NewWatcher(im *Importer, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		importer: im,
		debounce: defaultDebounce,
		logger:   logger,
		timers:   make(map[string]*pending),
		done:     make(chan struct{}),
	}
}

// Start watches the importer's directory until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.importer.Dir); err != nil {
		_ = fw.Close()
		return err
	}
	w.mu.Lock()
	w.watcher = fw
	w.mu.Unlock()
	w.logger.Info("dataset watcher started", zap.String("dir", w.importer.Dir))
	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				w.schedule(ctx, ev.Name)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("dataset watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) schedule(ctx context.Context, path string) {
	table, ok := w.importer.TableForPath(path)
	if !ok {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.timers[table.Name]; ok {
		p.timer.Stop()
	}
	p := &pending{}
	w.timers[table.Name] = p
	p.timer = time.AfterFunc(w.debounce, func() { w.fire(ctx, table, p) })
}

// pending is one scheduled re-import of a table.
type pending struct {
	timer *time.Timer
}

// fire runs the import if p is still the table's latest schedule.
// A schedule replaced by a newer event leaves the import to its successor.
func (w *Watcher) fire(ctx context.Context, table repositories.Table, p *pending) {
	w.mu.Lock()
	if w.timers[table.Name] != p {
		w.mu.Unlock()
		return
	}
	delete(w.timers, table.Name)
	hook := w.onImport
	w.mu.Unlock()

	n, err := w.importer.ImportTable(ctx, table)
	if err != nil {
		w.logger.Error("dataset re-import failed", zap.String("table", table.Name), zap.Error(err))
	}
	if hook != nil {
		hook(table.Name, n, err)
	}
}

// Stop releases the underlying watcher and pending timers.
func (w *Watcher) Stop() {
	w.mu.Lock()
	for name, p := range w.timers {
		p.timer.Stop()
		delete(w.timers, name)
	}
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()
	if fw != nil {
		_ = fw.Close()
	}
	w.stop.Do(func() { close(w.done) })
}
