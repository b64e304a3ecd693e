// Package otel turns event bus events into OpenTelemetry spans.
package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	reqid "github.com/hanpama/fedgraph/internal/reqid"
)

const instrumentation = "github.com/hanpama/fedgraph"

// Setup configures an OTLP exporter and attaches span subscribers to bus.
// If endpoint is empty, no telemetry is configured.
func Setup(ctx context.Context, endpoint, service string, bus *eventbus.Bus) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	exp, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	unsubscribe := Register(bus, tp.Tracer(instrumentation))
	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes span producers for every event kind and returns a
// function removing them again.
func Register(bus *eventbus.Bus, tracer trace.Tracer) (unsubscribe func()) {
	s := &subscriber{tracer: tracer}
	return s.register(bus)
}

type subscriber struct {
	tracer      trace.Tracer
	httpSpans   sync.Map // rid -> trace.Span
	gqlSpans    sync.Map // rid -> trace.Span
	entitySpans sync.Map // rid -> trace.Span
}

// parent picks the innermost open span of the request carried by ctx.
func (s *subscriber) parent(ctx context.Context, rid string, maps ...*sync.Map) context.Context {
	for _, m := range maps {
		if v, ok := m.Load(rid); ok {
			return trace.ContextWithSpan(ctx, v.(trace.Span))
		}
	}
	return ctx
}

func (s *subscriber) register(bus *eventbus.Bus) func() {
	var offs []func()
	on := func(off func()) { offs = append(offs, off) }

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.HTTPStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(ctx, "http.request")
		span.SetAttributes(
			semconv.HTTPMethodKey.String(e.Request.Method),
			attribute.String("http.target", e.Request.URL.Path),
			attribute.String("graphql.request_id", rid),
		)
		s.httpSpans.Store(rid, span)
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.HTTPFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.httpSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
		span.End()
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.GraphQLStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(s.parent(ctx, rid, &s.httpSpans), "graphql.operation")
		span.SetAttributes(
			attribute.String("graphql.operation.name", e.OperationName),
			attribute.String("graphql.operation.type", e.OperationType),
		)
		s.gqlSpans.Store(rid, span)
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.GraphQLFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.gqlSpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(attribute.Int("graphql.error_count", len(e.Errors)))
		if len(e.Errors) > 0 {
			span.SetStatus(codes.Error, e.Errors[0].Error())
		}
		span.End()
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.EntitiesStart) {
		rid, _ := reqid.FromContext(ctx)
		_, span := s.tracer.Start(s.parent(ctx, rid, &s.gqlSpans, &s.httpSpans), "federation.entities")
		span.SetAttributes(attribute.Int("federation.representations", e.Representations))
		s.entitySpans.Store(rid, span)
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.EntitiesFinish) {
		rid, _ := reqid.FromContext(ctx)
		v, ok := s.entitySpans.LoadAndDelete(rid)
		if !ok {
			return
		}
		span := v.(trace.Span)
		span.SetAttributes(
			attribute.Int("federation.errors", e.Errors),
			attribute.Int("federation.loads", e.Loads),
		)
		if e.Errors > 0 {
			span.SetStatus(codes.Error, "entity resolution failed")
		}
		span.End()
	}))

	on(eventbus.Subscribe(bus, func(ctx context.Context, e events.SchemaBuild) {
		end := time.Now()
		_, span := s.tracer.Start(ctx, "federation.build", trace.WithTimestamp(end.Add(-e.Duration)))
		span.SetAttributes(
			attribute.Bool("federation.gateway", e.Gateway),
			attribute.Int("federation.fragments", e.Fragments),
			attribute.Int("federation.types", e.Types),
			attribute.StringSlice("federation.entities", e.Entities),
		)
		if e.Err != nil {
			span.RecordError(e.Err)
			span.SetStatus(codes.Error, e.Err.Error())
		}
		span.End(trace.WithTimestamp(end))
	}))

	return func() {
		for _, off := range offs {
			off()
		}
	}
}
