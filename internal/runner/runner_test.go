package runner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/jsxast"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/transform"
)

const (
	profileSource = "export function UserProfile() {\n  return <div className=\"profile\" />;\n}\n"
	profileWant   = "export function UserProfile() {\n  return <div className=\"profile\" data-testid=\"user-profile\" />;\n}\n"
	taggedSource  = "const Done = () => <span data-testid=\"done\" />;\n"
	brokenSource  = "function (( {\n"
)

func init() {
	color.NoColor = true
}

func newRunner(cfg transform.Config, opts ...runner.Option) *runner.Runner {
	return runner.New(jsxast.NewParser(), transform.New(cfg), opts...)
}

func defaultConfig() transform.Config {
	return transform.Config{AttrName: "data-testid", IgnoreComponents: []string{}, IgnoreFiles: []string{}}
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	root := t.TempDir()

	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return root
}

func rel(t *testing.T, root string, paths []string) []string {
	t.Helper()

	out := make([]string, 0, len(paths))

	for _, path := range paths {
		r, err := filepath.Rel(root, path)
		require.NoError(t, err)

		out = append(out, filepath.ToSlash(r))
	}

	return out
}

func TestCollect(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"src/profile.tsx":               profileSource,
		"src/done.JSX":                  taggedSource,
		"src/util.ts":                   "export const x = 1;\n",
		"node_modules/lib/index.tsx":    profileSource,
		".cache/generated.tsx":          profileSource,
		"src/components/nested/app.tsx": profileSource,
	})

	files, err := newRunner(defaultConfig()).Collect(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"src/components/nested/app.tsx",
		"src/done.JSX",
		"src/profile.tsx",
	}, rel(t, root, files))
}

func TestCollectExplicitFiles(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"a.tsx": profileSource, "b.ts": ""})
	a := filepath.Join(root, "a.tsx")

	files, err := newRunner(defaultConfig()).Collect(a, a, filepath.Join(root, "b.ts"))
	require.NoError(t, err)
	assert.Equal(t, []string{a}, files)

	_, err = newRunner(defaultConfig()).Collect(filepath.Join(root, "b.ts"))
	require.ErrorIs(t, err, runner.ErrNoFiles)

	_, err = newRunner(defaultConfig()).Collect(filepath.Join(root, "missing"))
	require.Error(t, err)
}

func TestRunReportsWithoutWriting(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"profile.tsx": profileSource,
		"done.tsx":    taggedSource,
		"broken.tsx":  brokenSource,
	})

	r := newRunner(defaultConfig(), runner.WithWorkers(2))

	files, err := r.Collect(root)
	require.NoError(t, err)

	report, err := r.Run(context.Background(), files)
	require.NoError(t, err)
	require.Len(t, report.Files, 3)

	byName := make(map[string]runner.FileReport)
	for _, fr := range report.Files {
		byName[filepath.Base(fr.Path)] = fr
	}

	assert.Equal(t, runner.StatusChanged, byName["profile.tsx"].Status)
	assert.Equal(t, profileWant, string(byName["profile.tsx"].Output))
	assert.False(t, byName["profile.tsx"].Written)

	assert.Equal(t, runner.StatusUnchanged, byName["done.tsx"].Status)

	assert.Equal(t, runner.StatusError, byName["broken.tsx"].Status)
	require.ErrorIs(t, byName["broken.tsx"].Err, jsxast.ErrSyntax)
	require.ErrorIs(t, report.Err(), jsxast.ErrSyntax)

	assert.Equal(t, 1, report.Count(runner.StatusChanged))

	onDisk, err := os.ReadFile(filepath.Join(root, "profile.tsx"))
	require.NoError(t, err)
	assert.Equal(t, profileSource, string(onDisk))
}

func TestRunWriteBack(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"profile.tsx": profileSource})
	path := filepath.Join(root, "profile.tsx")

	r := newRunner(defaultConfig(), runner.WithWrite(true))

	report, err := r.Run(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, report.Files, 1)
	assert.True(t, report.Files[0].Written)

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, profileWant, string(onDisk))

	again, err := r.Run(context.Background(), []string{path})
	require.NoError(t, err)
	assert.Equal(t, runner.StatusUnchanged, again.Files[0].Status)
	assert.False(t, again.Files[0].Written)
}

func TestRunSkips(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{
		"legacy/old.tsx": profileSource,
		"big.tsx":        profileSource + strings.Repeat("// padding\n", 20),
		"blob.tsx":       "\x00\x01",
	})

	cfg := defaultConfig()
	cfg.IgnoreFiles = []string{"legacy/"}

	r := newRunner(cfg, runner.WithMaxFileSize(uint64(len(profileSource)+10)))

	report, err := r.Run(context.Background(), []string{
		filepath.Join(root, "legacy", "old.tsx"),
		filepath.Join(root, "big.tsx"),
		filepath.Join(root, "blob.tsx"),
	})
	require.NoError(t, err)

	assert.Equal(t, runner.StatusSkipped, report.Files[0].Status)
	assert.Equal(t, "ignored by legacy/", report.Files[0].Reason)
	assert.Equal(t, runner.StatusSkipped, report.Files[1].Status)
	assert.Equal(t, "too large", report.Files[1].Reason)
	assert.Equal(t, runner.StatusSkipped, report.Files[2].Status)
	assert.Equal(t, "binary content", report.Files[2].Reason)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"profile.tsx": profileSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(defaultConfig()).Run(ctx, []string{filepath.Join(root, "profile.tsx")})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRunRecordsMetrics(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()

	tm, err := observability.NewTransformMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	require.NoError(t, err)

	root := writeTree(t, map[string]string{"profile.tsx": profileSource, "done.tsx": taggedSource})

	_, err = newRunner(defaultConfig(), runner.WithMetrics(tm)).Run(context.Background(), []string{
		filepath.Join(root, "profile.tsx"),
		filepath.Join(root, "done.tsx"),
	})
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	totals := make(map[string]int64)

	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				for _, dp := range sum.DataPoints {
					totals[m.Name] += dp.Value
				}
			}
		}
	}

	assert.Equal(t, int64(2), totals["jsxtestid.files.total"])
	assert.Equal(t, int64(1), totals["jsxtestid.injections.total"])
}

func TestProcessSource(t *testing.T) {
	t.Parallel()

	fr := newRunner(defaultConfig()).ProcessSource(context.Background(), "inline.tsx", []byte(profileSource))
	require.NoError(t, fr.Err)
	assert.Equal(t, runner.StatusChanged, fr.Status)
	require.Len(t, fr.Result.Injected, 1)
	assert.Equal(t, "user-profile", fr.Result.Injected[0].Value)
}

func TestUnifiedDiff(t *testing.T) {
	t.Parallel()

	assert.Empty(t, runner.UnifiedDiff("same.tsx", []byte("a\n"), []byte("a\n")))

	got := runner.UnifiedDiff("x.tsx", []byte("a\nb\nc\n"), []byte("a\nB\nc\n"))
	assert.Equal(t, "--- a/x.tsx\n+++ b/x.tsx\n@@ -1,3 +1,3 @@\n a\n-b\n+B\n c\n", got)
}

func TestUnifiedDiffSplitsDistantHunks(t *testing.T) {
	t.Parallel()

	before := make([]string, 0, 20)
	for idx := range 20 {
		before = append(before, "line"+string(rune('a'+idx)))
	}

	after := append([]string(nil), before...)
	after[1] = "changed-1"
	after[18] = "changed-18"

	got := runner.UnifiedDiff("x.tsx",
		[]byte(strings.Join(before, "\n")+"\n"),
		[]byte(strings.Join(after, "\n")+"\n"))

	assert.Equal(t, 2, strings.Count(got, "@@ -"))
	assert.Contains(t, got, "@@ -1,5 +1,5 @@\n")
	assert.Contains(t, got, "@@ -16,5 +16,5 @@\n")
}

func TestWriteTableAndDiffs(t *testing.T) {
	t.Parallel()

	root := writeTree(t, map[string]string{"profile.tsx": profileSource})
	r := newRunner(defaultConfig())

	report, err := r.Run(context.Background(), []string{filepath.Join(root, "profile.tsx")})
	require.NoError(t, err)

	var table bytes.Buffer
	runner.WriteTable(&table, report)
	assert.Contains(t, table.String(), "profile.tsx")
	assert.Contains(t, table.String(), "changed")
	assert.Contains(t, strings.ToUpper(table.String()), "TOTAL: 1 FILES")

	var diffs bytes.Buffer
	require.NoError(t, runner.WriteDiffs(&diffs, report))
	assert.Contains(t, diffs.String(), "+  return <div className=\"profile\" data-testid=\"user-profile\" />;\n")
	assert.Contains(t, diffs.String(), "-  return <div className=\"profile\" />;\n")
}
