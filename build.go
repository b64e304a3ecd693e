package fedgraph

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	federation "github.com/hanpama/fedgraph/internal/federation"
	introspection "github.com/hanpama/fedgraph/internal/introspection"
	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

// BuildFederationSchema merges sources in order and builds the federation
// schema. Any failing step aborts the build; no partial schema is returned.
func BuildFederationSchema(sources []Source, opts ...Option) (s *Schema, err error) {
	cfg := config{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	logger := cfg.logger.With(zap.Bool("gateway", cfg.gateway))

	start := time.Now()
	defer func() {
		e := events.SchemaBuild{Gateway: cfg.gateway, Fragments: len(sources), Err: err, Duration: time.Since(start)}
		if s != nil {
			e.Types = len(s.types.Types)
			e.Entities = s.entities
		}
		eventbus.Publish(context.Background(), cfg.bus, e)
	}()

	docs := make([]*language.Document, len(sources))
	for i, src := range sources {
		doc, err := src.document(i)
		if err != nil {
			return nil, fmt.Errorf("parse fragment %d: %w", i, err)
		}
		docs[i] = doc
	}
	merged := language.Merge(docs...)
	logger.Debug("fragments merged", zap.String("stage", "merge"), zap.Int("fragments", len(docs)))

	injected, err := federation.Inject(merged.Schema, federation.InjectOptions{Gateway: cfg.gateway})
	if err != nil {
		return nil, err
	}
	logger.Debug("federation declarations injected", zap.String("stage", "inject"),
		zap.Int("directives", len(injected.Directives)))

	reconciled := reconcile.Reconcile(injected)
	logger.Debug("extensions reconciled", zap.String("stage", "reconcile"), zap.Int("types", len(reconciled.Runs)))

	if err := validation.Validate(reconciled, validation.Relaxed()); err != nil {
		return nil, err
	}

	types, err := schema.Build(reconciled)
	if err != nil {
		return nil, fmt.Errorf("build type system: %w", err)
	}

	syn, err := federation.Synthesize(types, cfg.resolvers, federation.SynthesizeOptions{
		Gateway: cfg.gateway,
		SDL:     merged.Source,
		Logger:  logger,
		Bus:     cfg.bus,
	})
	if err != nil {
		return nil, err
	}

	bound, rt := resolvers.Bind(syn.Schema, syn.Resolvers, resolvers.WithConcurrency(cfg.concurrency))
	wrapped := introspection.Wrap(rt, bound)
	logger.Debug("schema built", zap.String("stage", "synthesize"),
		zap.Int("types", len(bound.Types)),
		zap.Strings("entities", syn.Entities),
		zap.Duration("duration", time.Since(start)),
	)
	return &Schema{
		sdl:       merged.Source,
		types:     bound,
		resolvers: syn.Resolvers,
		entities:  syn.Entities,
		members:   syn.Members,
		exec:      wrapped,
		bus:       cfg.bus,
	}, nil
}

// BuildFederationSchemaFromString builds a schema from a single fragment.
func BuildFederationSchemaFromString(sdl string, opts ...Option) (*Schema, error) {
	return BuildFederationSchema([]Source{Text(sdl)}, opts...)
}

func fragmentName(index int) string {
	if index == 0 {
		return "schema.graphql"
	}
	return fmt.Sprintf("schema_%d.graphql", index)
}
