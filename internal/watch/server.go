package watch

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Handler serves /metrics, /healthz and /readyz. A nil metrics handler
// leaves /metrics unrouted.
func Handler(
	tracer trace.Tracer, red *observability.REDMetrics, metrics http.Handler, checks ...observability.ReadyCheck,
) http.Handler {
	mux := http.NewServeMux()

	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}

	mux.Handle("GET /healthz", observability.HealthHandler())
	mux.Handle("GET /readyz", observability.ReadyHandler(checks...))

	return observability.HTTPMiddleware(tracer, red, mux)
}

// Serve runs handler on listener until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, listener net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Serve(listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
