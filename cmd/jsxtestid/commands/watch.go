package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/jsxtestid/internal/runner"
	"github.com/Sumatoshi-tech/jsxtestid/internal/watch"
	"github.com/Sumatoshi-tech/jsxtestid/pkg/observability"
)

type watchFlags struct {
	metricsAddr string
	boundaries  string
	debounce    time.Duration
	workers     int
	dryRun      bool
	skipInitial bool
}

func newWatchCommand(root *rootFlags) *cobra.Command {
	flags := &watchFlags{}

	cmd := &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Rewrite TSX/JSX files whenever they change",
		Long: `Watch the given directories (default: the current directory) and rewrite
supported files as they are saved. Changes are batched for the debounce window.

With --metrics-addr an HTTP server exposes /metrics (Prometheus), /healthz and
/readyz.

Examples:
  jsxtestid watch src
  jsxtestid watch --metrics-addr :9464 --debounce 500ms .`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, root, flags, args)
		},
	}

	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve metrics and health probes on this address (default from config)")
	cmd.Flags().StringVar(&flags.boundaries, "boundaries", "", "boundary matching: identity or name (default from config)")
	cmd.Flags().DurationVar(&flags.debounce, "debounce", 0, "quiet period before a batch runs (default from config)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "parallel workers (default from config, 0 = CPU count)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "report rewrites without writing files")
	cmd.Flags().BoolVar(&flags.skipInitial, "skip-initial", false, "do not rewrite existing files before watching")

	return cmd
}

func runWatch(cmd *cobra.Command, root *rootFlags, flags *watchFlags, roots []string) error {
	sess, err := setup(cmd, root, observability.ModeWatch)
	if err != nil {
		return err
	}
	defer sess.close()

	if len(roots) == 0 {
		roots = []string{"."}
	}

	addr := flags.metricsAddr
	if addr == "" {
		addr = sess.cfg.Watch.MetricsAddr
	}

	debounce := flags.debounce
	if debounce <= 0 {
		debounce = sess.cfg.Watch.Debounce
	}

	var metricsHandler http.Handler

	if addr != "" {
		handler, provider, promErr := observability.PrometheusHandler()
		if promErr != nil {
			return promErr
		}

		defer func() {
			_ = provider.Shutdown(context.WithoutCancel(cmd.Context()))
		}()

		metricsHandler = handler
		sess.providers.Meter = provider.Meter(observability.InstrumentationName)
	}

	r, err := sess.newRunner(!flags.dryRun, flags.workers, flags.boundaries)
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	onReport := func(_ context.Context, report *runner.Report) {
		if !root.quiet {
			runner.WriteTable(out, report)
		}
	}

	if !flags.skipInitial {
		if initialErr := initialPass(cmd.Context(), r, roots, onReport); initialErr != nil {
			return initialErr
		}
	}

	watcher, err := watch.New(r,
		watch.WithDebounce(debounce),
		watch.WithLogger(sess.logger),
		watch.WithMetrics(red),
		watch.WithReportHandler(onReport),
	)
	if err != nil {
		return err
	}

	defer func() {
		_ = watcher.Close()
	}()

	if err := watcher.Add(roots...); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(cmd.Context())

	if addr != "" {
		listener, listenErr := (&net.ListenConfig{}).Listen(gctx, "tcp", addr)
		if listenErr != nil {
			return fmt.Errorf("listen %s: %w", addr, listenErr)
		}

		sess.logger.InfoContext(gctx, "serving metrics", "addr", listener.Addr().String())

		handler := watch.Handler(sess.providers.Tracer, red, metricsHandler, watcher.Ready)

		g.Go(func() error {
			return watch.Serve(gctx, listener, handler)
		})
	}

	g.Go(func() error {
		return watcher.Run(gctx)
	})

	sess.logger.InfoContext(gctx, "watching", "roots", roots, "debounce", debounce)

	return g.Wait() //nolint:wrapcheck // errors are already wrapped by watch.
}

func initialPass(ctx context.Context, r *runner.Runner, roots []string, onReport watch.ReportHandler) error {
	files, err := r.Collect(roots...)
	if err != nil {
		if errors.Is(err, runner.ErrNoFiles) {
			return nil
		}

		return err
	}

	report, err := r.Run(ctx, files)
	if err != nil {
		return err
	}

	onReport(ctx, report)

	return nil
}
