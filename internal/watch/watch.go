// Package watch re-runs the rewrite whenever supported sources change.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

// ErrNotRunning is reported by Ready before Run starts and after it returns.
var ErrNotRunning = errors.New("watcher not running")

const defaultDebounce = 200 * time.Millisecond

// ReportHandler receives the report of every debounced batch.
type ReportHandler func(ctx context.Context, report *runner.Report)

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the watcher waits for changes to settle.
func WithDebounce(delay time.Duration) Option {
	return func(w *Watcher) {
		if delay > 0 {
			w.debounce = delay
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithReportHandler registers fn to receive batch reports.
func WithReportHandler(fn ReportHandler) Option {
	return func(w *Watcher) {
		w.onReport = fn
	}
}

// WithMetrics records every batch under the "watch" operation.
func WithMetrics(red *observability.REDMetrics) Option {
	return func(w *Watcher) {
		w.red = red
	}
}

// Watcher batches filesystem events on supported files and hands each batch
// to the runner.
type Watcher struct {
	runner   *runner.Runner
	fsw      *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger
	onReport ReportHandler
	red      *observability.REDMetrics
	running  atomic.Bool
	batches  atomic.Int64
}

// New creates a Watcher. Close releases the underlying fsnotify watcher.
func New(r *runner.Runner, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		runner:   r,
		fsw:      fsw,
		debounce: defaultDebounce,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

// Add watches every directory under each root, skipping hidden and vendored trees.
func (w *Watcher) Add(roots ...string) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}

			if !entry.IsDir() {
				return nil
			}

			if path != root && runner.SkipDir(path, entry.Name()) {
				return filepath.SkipDir
			}

			if err := w.fsw.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("add %s: %w", root, err)
		}
	}

	return nil
}

// Batches returns the number of batches processed so far.
func (w *Watcher) Batches() int64 {
	return w.batches.Load()
}

// Ready is an observability.ReadyCheck for the watch loop.
func (w *Watcher) Ready(context.Context) error {
	if !w.running.Load() {
		return ErrNotRunning
	}

	return nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	if err := w.fsw.Close(); err != nil {
		return fmt.Errorf("close fsnotify watcher: %w", err)
	}

	return nil
}

// Run processes events until ctx is done. Changes arriving within the
// debounce window of each other form one batch.
func (w *Watcher) Run(ctx context.Context) error {
	w.running.Store(true)
	defer w.running.Store(false)

	pending := make(map[string]struct{})

	timer := time.NewTimer(w.debounce)
	timer.Stop()

	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}

			if w.accept(event) {
				pending[event.Name] = struct{}{}

				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}

			w.logger.WarnContext(ctx, "watch error", "error", err)
		case <-timer.C:
			w.flush(ctx, pending)
			clear(pending)
		}
	}
}

// accept reports whether event names a supported file worth processing.
// New directories are watched as a side effect.
func (w *Watcher) accept(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return false
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.Add(event.Name); err != nil {
				w.logger.Warn("watch new directory", "path", event.Name, "error", err)
			}
		}

		return false
	}

	return w.runner.Parser().IsSupported(event.Name, nil)
}

func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) {
	if len(pending) == 0 {
		return
	}

	files := make([]string, 0, len(pending))
	for path := range pending {
		files = append(files, path)
	}

	slices.Sort(files)

	if w.red != nil {
		defer w.red.TrackInflight(ctx, "watch")()
	}

	start := time.Now()

	report, err := w.runner.Run(ctx, files)

	status := observability.StatusOK
	if err != nil || report.Count(runner.StatusError) > 0 {
		status = observability.StatusError
	}

	if w.red != nil {
		w.red.RecordRequest(ctx, "watch", status, time.Since(start))
	}

	if err != nil {
		w.logger.WarnContext(ctx, "watch batch aborted", "error", err)

		return
	}

	w.batches.Add(1)

	w.logger.DebugContext(ctx, "watch batch done", "files", len(files), "changed", report.Count(runner.StatusChanged))

	if w.onReport != nil {
		w.onReport(ctx, report)
	}
}
