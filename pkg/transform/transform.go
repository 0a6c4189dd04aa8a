// Package transform rewrites JSX program trees: it injects a diagnostic
// attribute into the root element of every component and applies a fixed set
// of attribute and identifier rewrites, in a single depth-first pass.
package transform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast/pkg/node"
)

const tracerName = "github.com/Sumatoshi-tech/jsxtestid/pkg/transform"

// Injection records one attribute added to a component root.
type Injection struct {
	Component string          `json:"component"`
	Value     string          `json:"value"`
	Element   string          `json:"element"`
	Pos       *node.Positions `json:"pos,omitempty"`
}

// Result summarizes one invocation.
type Result struct {
	Filename         string      `json:"filename"`
	Skipped          bool        `json:"skipped,omitempty"`
	SkipPattern      string      `json:"skipPattern,omitempty"`
	Injected         []Injection `json:"injected,omitempty"`
	Normalized       int         `json:"normalized,omitempty"`
	RenamedAttrs     int         `json:"renamedAttrs,omitempty"`
	RenamedCalls     int         `json:"renamedCalls,omitempty"`
	RenamedFunctions int         `json:"renamedFunctions,omitempty"`
}

// Changes returns the number of rewrites applied.
func (r Result) Changes() int {
	return len(r.Injected) + r.Normalized + r.RenamedAttrs + r.RenamedCalls + r.RenamedFunctions
}

// Changed reports whether the tree was mutated.
func (r Result) Changed() bool {
	return r.Changes() > 0
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithRules replaces the default rule set.
func WithRules(rules Rules) Option {
	return func(t *Transformer) {
		t.rules = rules
	}
}

// WithNameMatchedBoundaries closes a component boundary at the first closing
// tag whose name equals the root's name, instead of at the root's own closing
// tag. Same-named nested elements then close the boundary early.
func WithNameMatchedBoundaries() Option {
	return func(t *Transformer) {
		t.nameMatched = true
	}
}

// WithLogger sets the logger used for per-invocation debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Transformer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithTracer sets the tracer; the global provider is used by default.
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Transformer) {
		if tracer != nil {
			t.tracer = tracer
		}
	}
}

// Transformer applies the rewrite rules to program trees. It holds no
// per-invocation state and is safe for concurrent use.
type Transformer struct {
	cfg         Config
	rules       Rules
	nameMatched bool
	logger      *slog.Logger
	tracer      trace.Tracer
}

// New creates a Transformer for cfg.
func New(cfg Config, opts ...Option) *Transformer {
	t := &Transformer{
		cfg:    cfg,
		rules:  DefaultRules(),
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Config returns the configuration the Transformer was built with.
func (t *Transformer) Config() Config {
	return t.cfg
}

// Rules returns the active rule set.
func (t *Transformer) Rules() Rules {
	return t.rules
}

// Transform rewrites root in place. When filename matches an ignoreFiles
// entry the tree is not visited and Result.Skipped is set. On an
// *UnsupportedNameError the returned Result describes the rewrites already
// applied.
func (t *Transformer) Transform(ctx context.Context, filename string, root *node.Node) (Result, error) {
	_, span := t.tracer.Start(ctx, "jsxtestid.transform",
		trace.WithAttributes(attribute.String("jsxtestid.file", filename)))
	defer span.End()

	result := Result{Filename: filename}

	if pattern, skip := t.cfg.skipsFile(filename); skip {
		result.Skipped = true
		result.SkipPattern = pattern

		span.SetAttributes(attribute.Bool("jsxtestid.skipped", true))
		t.logger.DebugContext(ctx, "file skipped", "file", filename, "pattern", pattern)

		return result, nil
	}

	if root == nil {
		return result, nil
	}

	if err := node.Validate(root); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return result, fmt.Errorf("transform %s: %w", filename, err)
	}

	w := &walker{cfg: t.cfg, rules: t.rules, nameMatched: t.nameMatched, result: &result}

	_, err := w.visit(root, state{})

	span.SetAttributes(
		attribute.Int("jsxtestid.injected", len(result.Injected)),
		attribute.Int("jsxtestid.changes", result.Changes()),
	)

	if err != nil {
		var nameErr *UnsupportedNameError
		if errors.As(err, &nameErr) {
			span.SetAttributes(attribute.String("jsxtestid.element", nameErr.Name))
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.logger.DebugContext(ctx, "transform aborted", "file", filename, "error", err, "changes", result.Changes())

		return result, err
	}

	t.logger.DebugContext(ctx, "transform complete",
		"file", filename,
		"injected", len(result.Injected),
		"normalized", result.Normalized,
		"renamed_attrs", result.RenamedAttrs,
		"renamed_calls", result.RenamedCalls,
		"renamed_functions", result.RenamedFunctions,
	)

	return result, nil
}
