package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricRequestsTotal    = "jsxtestid.requests.total"
	metricRequestDuration  = "jsxtestid.request.duration.seconds"
	metricErrorsTotal      = "jsxtestid.errors.total"
	metricInflightRequests = "jsxtestid.inflight.requests"

	metricFilesTotal      = "jsxtestid.files.total"
	metricInjectionsTotal = "jsxtestid.injections.total"
	metricRewritesTotal   = "jsxtestid.rewrites.total"

	attrOp     = "op"
	attrStatus = "status"

	// StatusOK and StatusError label completed requests.
	StatusOK    = "ok"
	StatusError = "error"
)

// Rewriting a single file is sub-millisecond; whole-tree runs reach seconds.
var durationBucketBoundaries = []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

// REDMetrics holds the Rate, Error and Duration instruments for one operation family.
type REDMetrics struct {
	requestsTotal    metric.Int64Counter
	requestDuration  metric.Float64Histogram
	errorsTotal      metric.Int64Counter
	inflightRequests metric.Int64UpDownCounter
}

// NewREDMetrics creates the RED instruments on mt.
func NewREDMetrics(mt metric.Meter) (*REDMetrics, error) {
	in := &instruments{meter: mt}

	rm := &REDMetrics{
		requestsTotal:    in.counter(metricRequestsTotal, "Operations handled", "{request}"),
		requestDuration:  in.seconds(metricRequestDuration, "Operation latency"),
		errorsTotal:      in.counter(metricErrorsTotal, "Operations that failed", "{error}"),
		inflightRequests: in.gauge(metricInflightRequests, "Operations in progress", "{request}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return rm, nil
}

// RecordRequest records one completed operation.
func (rm *REDMetrics) RecordRequest(ctx context.Context, op, status string, duration time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String(attrOp, op),
		attribute.String(attrStatus, status),
	)

	rm.requestsTotal.Add(ctx, 1, attrs)
	rm.requestDuration.Record(ctx, duration.Seconds(), attrs)

	if status == StatusError {
		rm.errorsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrOp, op)))
	}
}

// TrackInflight increments the in-flight counter and returns its decrement.
func (rm *REDMetrics) TrackInflight(ctx context.Context, op string) func() {
	attrs := metric.WithAttributes(attribute.String(attrOp, op))
	rm.inflightRequests.Add(ctx, 1, attrs)

	return func() {
		rm.inflightRequests.Add(ctx, -1, attrs)
	}
}

// TransformMetrics counts per-file rewrite outcomes.
type TransformMetrics struct {
	filesTotal      metric.Int64Counter
	injectionsTotal metric.Int64Counter
	rewritesTotal   metric.Int64Counter
}

// NewTransformMetrics creates the rewrite instruments on mt.
func NewTransformMetrics(mt metric.Meter) (*TransformMetrics, error) {
	in := &instruments{meter: mt}

	tm := &TransformMetrics{
		filesTotal:      in.counter(metricFilesTotal, "Files processed, by outcome", "{file}"),
		injectionsTotal: in.counter(metricInjectionsTotal, "Test id attributes injected", "{attribute}"),
		rewritesTotal:   in.counter(metricRewritesTotal, "Legacy rewrites applied", "{rewrite}"),
	}

	if err := in.err(); err != nil {
		return nil, err
	}

	return tm, nil
}

// RecordFile records one processed file. status is the file outcome
// ("changed", "unchanged", "skipped", "error").
func (tm *TransformMetrics) RecordFile(ctx context.Context, status string, injected, rewrites int) {
	tm.filesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))

	if injected > 0 {
		tm.injectionsTotal.Add(ctx, int64(injected))
	}

	if rewrites > 0 {
		tm.rewritesTotal.Add(ctx, int64(rewrites))
	}
}
