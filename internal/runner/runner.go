// Package runner drives the transform over files on disk: it collects
// sources, rewrites them with bounded parallelism, and reports the outcome.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

const tracerName = "github.com/Sumatoshi-tech/jsxtestid/internal/runner"

// ErrWouldChange is returned in check mode when at least one file would be rewritten.
var ErrWouldChange = errors.New("files would be rewritten")

// Status is the outcome of one file.
type Status string

// File outcomes.
const (
	StatusChanged   Status = "changed"
	StatusUnchanged Status = "unchanged"
	StatusSkipped   Status = "skipped"
	StatusError     Status = "error"
)

// FileReport describes one processed file.
type FileReport struct {
	Path     string
	Size     int64
	Status   Status
	Reason   string
	Result   transform.Result
	Original []byte
	Output   []byte
	Written  bool
	Duration time.Duration
	Err      error
}

// Report aggregates a run.
type Report struct {
	Files   []FileReport
	Elapsed time.Duration
}

// Count returns the number of files with the given status.
func (r *Report) Count(status Status) int {
	n := 0

	for idx := range r.Files {
		if r.Files[idx].Status == status {
			n++
		}
	}

	return n
}

// Err joins the per-file errors.
func (r *Report) Err() error {
	var errs []error

	for idx := range r.Files {
		if r.Files[idx].Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Files[idx].Path, r.Files[idx].Err))
		}
	}

	return errors.Join(errs...)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers bounds parallelism; zero or less means one worker per CPU.
func WithWorkers(workers int) Option {
	return func(r *Runner) {
		r.workers = workers
	}
}

// WithMaxFileSize skips files larger than size bytes; zero disables the limit.
func WithMaxFileSize(size uint64) Option {
	return func(r *Runner) {
		r.maxFileSize = size
	}
}

// WithWrite writes changed files back in place.
func WithWrite(write bool) Option {
	return func(r *Runner) {
		r.write = write
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records per-file outcomes on tm.
func WithMetrics(tm *observability.TransformMetrics) Option {
	return func(r *Runner) {
		r.metrics = tm
	}
}

// Runner rewrites files with one shared parser and transformer.
type Runner struct {
	parser      *jsxast.Parser
	transformer *transform.Transformer
	workers     int
	maxFileSize uint64
	write       bool
	logger      *slog.Logger
	metrics     *observability.TransformMetrics
	tracer      trace.Tracer
}

// New creates a Runner.
func New(parser *jsxast.Parser, transformer *transform.Transformer, opts ...Option) *Runner {
	r := &Runner{
		parser:      parser,
		transformer: transformer,
		logger:      slog.Default(),
		tracer:      otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Parser returns the parser used by the Runner.
func (r *Runner) Parser() *jsxast.Parser {
	return r.parser
}

// Run processes files concurrently. Per-file failures are recorded in the
// report; the returned error is non-nil only when ctx is cancelled.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	ctx, span := r.tracer.Start(ctx, "jsxtestid.run",
		trace.WithAttributes(attribute.Int("jsxtestid.files", len(files))))
	defer span.End()

	start := time.Now()
	report := &Report{Files: make([]FileReport, len(files))}

	workers := r.workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for idx, path := range files {
		if gctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err //nolint:wrapcheck // cancellation is reported as is.
			}

			report.Files[idx] = r.processFile(gctx, path)

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	report.Elapsed = time.Since(start)

	span.SetAttributes(
		attribute.Int("jsxtestid.changed", report.Count(StatusChanged)),
		attribute.Int("jsxtestid.failed", report.Count(StatusError)),
	)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return report, fmt.Errorf("run: %w", err)
	}

	r.logger.InfoContext(ctx, "run complete",
		"files", len(files),
		"changed", report.Count(StatusChanged),
		"skipped", report.Count(StatusSkipped),
		"failed", report.Count(StatusError),
		"elapsed", report.Elapsed,
	)

	return report, nil
}

func (r *Runner) processFile(ctx context.Context, path string) FileReport {
	start := time.Now()

	fr := r.rewriteFile(ctx, path)
	fr.Duration = time.Since(start)

	if fr.Err != nil {
		r.logger.WarnContext(ctx, "file failed", "path", fr.Path, "error", fr.Err)
	}

	if r.metrics != nil {
		rewrites := fr.Result.Changes() - len(fr.Result.Injected)
		r.metrics.RecordFile(ctx, string(fr.Status), len(fr.Result.Injected), rewrites)
	}

	return fr
}

func (r *Runner) rewriteFile(ctx context.Context, path string) FileReport {
	fr := FileReport{Path: path}

	info, err := os.Stat(path)
	if err != nil {
		return failed(fr, fmt.Errorf("stat: %w", err))
	}

	fr.Size = info.Size()

	if r.maxFileSize > 0 && uint64(info.Size()) > r.maxFileSize {
		fr.Status = StatusSkipped
		fr.Reason = "too large"

		return fr
	}

	//nolint:gosec // paths come from Collect or the command line.
	content, err := os.ReadFile(path)
	if err != nil {
		return failed(fr, fmt.Errorf("read: %w", err))
	}

	if isBinary(content) {
		fr.Status = StatusSkipped
		fr.Reason = "binary content"

		return fr
	}

	fr = r.ProcessSource(ctx, path, content)
	if fr.Err != nil || fr.Status != StatusChanged || !r.write {
		return fr
	}

	err = os.WriteFile(path, fr.Output, info.Mode().Perm())
	if err != nil {
		return failed(fr, fmt.Errorf("write: %w", err))
	}

	fr.Written = true

	return fr
}

// ProcessSource rewrites content in memory. filename drives the ignoreFiles
// match and error messages.
func (r *Runner) ProcessSource(ctx context.Context, filename string, content []byte) FileReport {
	fr := FileReport{Path: filename, Size: int64(len(content)), Original: content}

	program, err := r.parser.Parse(ctx, filename, content)
	if err != nil {
		return failed(fr, err)
	}

	fr.Result, err = r.transformer.Transform(ctx, filename, program)
	if err != nil {
		return failed(fr, err)
	}

	if fr.Result.Skipped {
		fr.Status = StatusSkipped
		fr.Reason = "ignored by " + fr.Result.SkipPattern
		fr.Output = content

		return fr
	}

	fr.Output, err = jsxast.Print(program, content)
	if err != nil {
		return failed(fr, fmt.Errorf("print: %w", err))
	}

	fr.Status = StatusUnchanged
	if !bytes.Equal(fr.Output, content) {
		fr.Status = StatusChanged
	}

	return fr
}

func failed(fr FileReport, err error) FileReport {
	fr.Status = StatusError
	fr.Err = err

	return fr
}
