// Package mcp implements a Model Context Protocol server exposing the JSX
// rewrite as MCP tools over stdio transport.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/lru"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/version"
)

const (
	serverName = "jsxtestid"
	toolCount  = 2

	defaultCacheEntries = 256
	maxCacheBytes       = 32 << 20

	mcpSpanPrefix  = "mcp."
	traceIDMetaKey = "trace_id"
)

// ServerDeps holds injectable dependencies. Zero values use defaults.
type ServerDeps struct {
	// Logger is passed to the SDK and the transformer. Nil uses slog default.
	Logger *slog.Logger

	// Metrics records per-tool RED metrics when set.
	Metrics *observability.REDMetrics

	// Tracer creates a span per tool call when set.
	Tracer trace.Tracer

	// Options are applied to every transform, e.g. project rules.
	Options []transform.Option

	// CacheEntries bounds the jsx_transform result cache. Zero uses the default.
	CacheEntries int
}

// Server wraps the MCP SDK server with the jsxtestid tools.
type Server struct {
	inner   *mcpsdk.Server
	parser  *jsxast.Parser
	options []transform.Option
	mu      sync.RWMutex
	tools   []string
	metrics *observability.REDMetrics
	tracer  trace.Tracer
	results *lru.Cache[string, TransformOutput]
}

// NewServer creates a server with all tools registered.
func NewServer(deps ServerDeps) *Server {
	entries := deps.CacheEntries
	if entries <= 0 {
		entries = defaultCacheEntries
	}

	opts := &mcpsdk.ServerOptions{}
	if deps.Logger != nil {
		opts.Logger = deps.Logger
	}

	srv := &Server{
		inner:   mcpsdk.NewServer(&mcpsdk.Implementation{Name: serverName, Version: version.Version}, opts),
		parser:  jsxast.NewParser(),
		options: slices.Clone(deps.Options),
		tools:   make([]string, 0, toolCount),
		metrics: deps.Metrics,
		tracer:  deps.Tracer,
		results: lru.New(entries, lru.WithMaxBytes[string, TransformOutput](maxCacheBytes, outputSize)),
	}

	if deps.Logger != nil {
		srv.options = append(srv.options, transform.WithLogger(deps.Logger))
	}

	srv.registerTools()

	return srv
}

// CacheStats reports the jsx_transform result cache counters.
func (s *Server) CacheStats() lru.Stats {
	return s.results.Stats()
}

// ListToolNames returns the sorted names of all registered tools.
func (s *Server) ListToolNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := slices.Clone(s.tools)
	slices.Sort(names)

	return names
}

// Run serves on stdio until ctx is canceled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.RunWithTransport(ctx, &mcpsdk.StdioTransport{})
}

// RunWithTransport serves on transport until ctx is canceled or the
// connection closes.
func (s *Server) RunWithTransport(ctx context.Context, transport mcpsdk.Transport) error {
	err := s.inner.Run(ctx, transport)
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	return nil
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTransform,
		Description: transformToolDescription,
	}, withMetrics(s.metrics, ToolNameTransform, withTracing(s.tracer, ToolNameTransform, s.handleTransform)))

	s.trackTool(ToolNameTransform)

	mcpsdk.AddTool(s.inner, &mcpsdk.Tool{
		Name:        ToolNameTree,
		Description: treeToolDescription,
	}, withMetrics(s.metrics, ToolNameTree, withTracing(s.tracer, ToolNameTree, s.handleTree)))

	s.trackTool(ToolNameTree)
}

func (s *Server) trackTool(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tools = append(s.tools, name)
}

// withTracing opens a span per call and appends the trace id to sampled results.
func withTracing[Input any](
	tracer trace.Tracer,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if tracer == nil {
		return handler
	}

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		ctx, span := tracer.Start(ctx, mcpSpanPrefix+toolName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("mcp.tool", toolName)),
		)
		defer span.End()

		result, output, err := handler(ctx, req, input)

		if sc := span.SpanContext(); sc.IsSampled() && result != nil {
			result.Content = append(result.Content,
				&mcpsdk.TextContent{Text: traceIDMetaKey + "=" + sc.TraceID().String()})
		}

		return result, output, err
	}
}

// withMetrics records RED metrics per call under "mcp.<tool>".
func withMetrics[Input any](
	metrics *observability.REDMetrics,
	toolName string,
	handler func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error),
) func(context.Context, *mcpsdk.CallToolRequest, Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
	if metrics == nil {
		return handler
	}

	op := mcpSpanPrefix + toolName

	return func(ctx context.Context, req *mcpsdk.CallToolRequest, input Input) (*mcpsdk.CallToolResult, ToolOutput, error) {
		start := time.Now()

		defer metrics.TrackInflight(ctx, op)()

		result, output, err := handler(ctx, req, input)

		status := observability.StatusOK
		if err != nil || (result != nil && result.IsError) {
			status = observability.StatusError
		}

		metrics.RecordRequest(ctx, op, status, time.Since(start))

		return result, output, err
	}
}

const (
	transformToolDescription = "Inject data-testid style attributes into the root element of every " +
		"React component in a TSX/JSX source and apply the legacy attribute rewrites. " +
		"Accepts inline code, an optional filename and an optional plugin configuration JSON."

	treeToolDescription = "Parse a TSX/JSX source into the program tree used by the rewriter. " +
		"Returns the tree as JSON, optionally filtered to one node type."
)
