package mcp_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/mcp"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

const profileSource = "export function UserProfile() {\n  return <div className=\"profile\" />;\n}\n"

func connect(t *testing.T, srv *mcp.Server) *mcpsdk.ClientSession {
	t.Helper()

	clientTransport, serverTransport := mcpsdk.NewInMemoryTransports()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

	serverDone := make(chan error, 1)

	go func() {
		serverDone <- srv.RunWithTransport(ctx, serverTransport)
	}()

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = session.Close()

		cancel()
		<-serverDone
	})

	return session
}

func callTool(t *testing.T, session *mcpsdk.ClientSession, name string, args map[string]any) *mcpsdk.CallToolResult {
	t.Helper()

	result, err := session.CallTool(context.Background(), &mcpsdk.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)

	return result
}

func firstText(t *testing.T, result *mcpsdk.CallToolResult) string {
	t.Helper()

	text, ok := result.Content[0].(*mcpsdk.TextContent)
	require.True(t, ok, "content is %T", result.Content[0])

	return text.Text
}

func TestServer_ListTools(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{})
	assert.Equal(t, []string{mcp.ToolNameTransform, mcp.ToolNameTree}, srv.ListToolNames())

	session := connect(t, srv)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(tools.Tools))
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)

		assert.NotNil(t, tool.InputSchema, "tool %s missing input schema", tool.Name)
	}

	assert.ElementsMatch(t, []string{mcp.ToolNameTransform, mcp.ToolNameTree}, names)
}

func TestServer_Transform(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameTransform, map[string]any{
		"code": profileSource,
		"diff": true,
	})
	require.False(t, result.IsError, firstText(t, result))

	var out mcp.TransformOutput
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &out))

	assert.True(t, out.Changed)
	assert.Contains(t, out.Output, `<div className="profile" data-testid="user-profile" />`)
	require.Len(t, out.Result.Injected, 1)
	assert.Equal(t, "UserProfile", out.Result.Injected[0].Component)
	assert.Contains(t, out.Diff, "+++ b/component.tsx")
}

func TestServer_TransformCustomConfig(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameTransform, map[string]any{
		"code":   profileSource,
		"config": `{"attrName":"data-qa","ignoreComponents":[],"ignoreFiles":[]}`,
	})
	require.False(t, result.IsError, firstText(t, result))

	var out mcp.TransformOutput
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &out))
	assert.Contains(t, out.Output, `data-qa="user-profile"`)
	assert.Empty(t, out.Diff)
}

func TestServer_TransformErrors(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{name: "empty code", args: map[string]any{"code": ""}, want: "code parameter is required"},
		{name: "unsupported file", args: map[string]any{"code": profileSource, "filename": "main.go"}, want: "main.go"},
		{name: "bad config", args: map[string]any{"code": profileSource, "config": `{"attrName":1}`}, want: "plugin config"},
		{name: "syntax error", args: map[string]any{"code": "function (( {\n"}, want: "component.tsx"},
	}

	for _, tt := range tests {
		result := callTool(t, session, mcp.ToolNameTransform, tt.args)
		assert.True(t, result.IsError, tt.name)
		assert.Contains(t, firstText(t, result), tt.want, tt.name)
	}
}

func TestServer_Tree(t *testing.T) {
	t.Parallel()

	session := connect(t, mcp.NewServer(mcp.ServerDeps{}))

	result := callTool(t, session, mcp.ToolNameTree, map[string]any{"code": profileSource})
	require.False(t, result.IsError, firstText(t, result))

	var root map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &root))
	assert.Equal(t, "Program", root["type"])
	assert.NotEmpty(t, root["id"])

	result = callTool(t, session, mcp.ToolNameTree, map[string]any{
		"code":  profileSource,
		"query": "JSXOpening",
	})
	require.False(t, result.IsError, firstText(t, result))

	var openings []map[string]any
	require.NoError(t, json.Unmarshal([]byte(firstText(t, result)), &openings))
	require.Len(t, openings, 1)
	assert.Equal(t, "JSXOpening", openings[0]["type"])

	result = callTool(t, session, mcp.ToolNameTree, map[string]any{
		"code":  profileSource,
		"query": "JSXOpenin",
	})
	assert.True(t, result.IsError)
	assert.Contains(t, firstText(t, result), `did you mean "JSXOpening"?`)
}

func TestServer_RecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	red, err := observability.NewREDMetrics(provider.Meter("test"))
	require.NoError(t, err)

	session := connect(t, mcp.NewServer(mcp.ServerDeps{Metrics: red}))

	callTool(t, session, mcp.ToolNameTransform, map[string]any{"code": profileSource})
	callTool(t, session, mcp.ToolNameTransform, map[string]any{"code": ""})

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64

	for _, scope := range rm.ScopeMetrics {
		for _, metric := range scope.Metrics {
			if metric.Name != "jsxtestid.requests.total" {
				continue
			}

			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)

			for _, point := range sum.DataPoints {
				total += point.Value
			}
		}
	}

	assert.Equal(t, int64(2), total)
}

func TestServer_TransformCachesResults(t *testing.T) {
	t.Parallel()

	srv := mcp.NewServer(mcp.ServerDeps{CacheEntries: 4})
	session := connect(t, srv)

	args := map[string]any{"code": profileSource, "filename": "UserProfile.tsx"}

	first := firstText(t, callTool(t, session, mcp.ToolNameTransform, args))
	second := firstText(t, callTool(t, session, mcp.ToolNameTransform, args))
	assert.Equal(t, first, second)

	callTool(t, session, mcp.ToolNameTransform, map[string]any{"code": profileSource, "diff": true})

	stats := srv.CacheStats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(2), stats.Misses)
	assert.Equal(t, 2, stats.Entries)
	assert.Equal(t, 4, stats.MaxEntries)
}
