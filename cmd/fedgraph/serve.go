package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hanpama/fedgraph"
	"github.com/hanpama/fedgraph/internal/logging"
	"github.com/hanpama/fedgraph/internal/metrics"
	"github.com/hanpama/fedgraph/internal/otel"
)

const (
	keyAddr          = "addr"
	keyData          = "data"
	keyPretty        = "pretty"
	keyTimeout       = "timeout"
	keyForwardHeader = "forward-header"
	keyCORS          = "cors"
	keyGraphiQL      = "graphiql"
	keyMetrics       = "metrics"
	keyOTelEndpoint  = "otel.endpoint"
	keyOTelService   = "otel.service"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve <schema.graphql|dir>...",
		Short:   "Serve a mock subgraph backed by YAML fixtures",
		Example: `fedgraph serve users.graphql --data users.yaml --addr :4001`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, cmd, args)
		},
	}
	f := cmd.Flags()
	f.String(keyAddr, ":4001", "HTTP listen address")
	f.String(keyData, "", "YAML fixtures backing root fields and entities")
	f.Bool(keyPretty, false, "Pretty-print JSON responses")
	f.Duration(keyTimeout, 10*time.Second, "Per-request timeout")
	f.StringSlice(keyForwardHeader, nil, "Forward an HTTP header to resolvers as gRPC metadata. Repeatable")
	f.StringSlice(keyCORS, nil, "Allowed CORS origin. Repeatable")
	f.Bool(keyGraphiQL, true, "Serve GraphiQL on GET requests from browsers")
	f.Bool(keyMetrics, true, "Expose Prometheus metrics on /metrics")
	f.String(keyOTelEndpoint, "", "OTLP collector endpoint")
	f.String(keyOTelService, "fedgraph", "OpenTelemetry service name")
	return cmd
}

// subgraph is a built, routable mock subgraph.
type subgraph struct {
	router  http.Handler
	closers []func(context.Context) error
}

func (s *subgraph) close(ctx context.Context) error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i](ctx))
	}
	return err
}

func (a *app) newSubgraph(ctx context.Context, files []string) (*subgraph, error) {
	v := a.v
	sg := &subgraph{}
	bus := fedgraph.NewEventBus()
	off := logging.Subscribe(bus, a.logger)
	sg.closers = append(sg.closers, func(context.Context) error { off(); return nil })

	var m *metrics.Metrics
	if v.GetBool(keyMetrics) {
		m = metrics.New(true)
		off := m.Subscribe(bus)
		sg.closers = append(sg.closers, func(context.Context) error { off(); return nil })
	}
	shutdown, err := otel.Setup(ctx, v.GetString(keyOTelEndpoint), v.GetString(keyOTelService), bus)
	if err != nil {
		return nil, multierr.Append(err, sg.close(ctx))
	}
	sg.closers = append(sg.closers, shutdown)

	opts := []fedgraph.Option{fedgraph.WithEventBus(bus)}
	if data := v.GetString(keyData); data != "" {
		fx, err := loadFixtures(data)
		if err != nil {
			return nil, multierr.Append(err, sg.close(ctx))
		}
		opts = append(opts, fedgraph.WithResolvers(fx.resolvers()))
	}
	s, err := a.build(ctx, files, opts...)
	if err != nil {
		return nil, multierr.Append(err, sg.close(ctx))
	}

	hopts := []fedgraph.HandlerOption{
		fedgraph.HandlerTimeout(v.GetDuration(keyTimeout)),
		fedgraph.HandlerGraphiQL(v.GetBool(keyGraphiQL)),
	}
	if v.GetBool(keyPretty) {
		hopts = append(hopts, fedgraph.HandlerPretty())
	}
	if h := v.GetStringSlice(keyForwardHeader); len(h) > 0 {
		hopts = append(hopts, fedgraph.HandlerForwardHeaders(h...))
	}
	if origins := v.GetStringSlice(keyCORS); len(origins) > 0 {
		hopts = append(hopts, fedgraph.HandlerCORS(origins...))
	}
	handler, err := s.Handler(hopts...)
	if err != nil {
		return nil, multierr.Append(err, sg.close(ctx))
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/graphql", handler)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if m != nil {
		r.Handle("/metrics", m.Handler())
	}
	sg.router = r
	return sg, nil
}

func (a *app) serve(ctx context.Context, cmd *cobra.Command, files []string) (err error) {
	sg, err := a.newSubgraph(ctx, files)
	if err != nil {
		return reportBuildError(cmd, err)
	}
	srv := &http.Server{
		Addr:              a.v.GetString(keyAddr),
		Handler:           sg.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	a.logger.Info("subgraph listening", zap.String("addr", srv.Addr), zap.Strings("schema", files))

	select {
	case err = <-errc:
	case <-ctx.Done():
	}
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return multierr.Combine(err, srv.Shutdown(shutdownCtx), sg.close(shutdownCtx))
}
