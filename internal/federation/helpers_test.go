package federation_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/fedgraph/internal/executor"
	federation "github.com/hanpama/fedgraph/internal/federation"
	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

func parse(t *testing.T, sdl string) *language.SchemaDocument {
	t.Helper()
	doc, err := language.ParseSchema("test.graphql", sdl)
	require.NoError(t, err)
	return doc
}

func buildSchema(t *testing.T, sdl string, gateway bool) *schema.Schema {
	t.Helper()
	injected, err := federation.Inject(parse(t, sdl), federation.InjectOptions{Gateway: gateway})
	require.NoError(t, err)
	doc := reconcile.Reconcile(injected)
	require.NoError(t, validation.Validate(doc, validation.Relaxed()))
	sch, err := schema.Build(doc)
	require.NoError(t, err)
	return sch
}

func synthesize(t *testing.T, sdl string, m resolvers.Map, opts federation.SynthesizeOptions) *federation.Synthesis {
	t.Helper()
	if opts.SDL == "" {
		opts.SDL = sdl
	}
	syn, err := federation.Synthesize(buildSchema(t, sdl, opts.Gateway), m, opts)
	require.NoError(t, err)
	return syn
}

func execute(t *testing.T, syn *federation.Synthesis, query string) *executor.ExecutionResult {
	t.Helper()
	bound, rt := resolvers.Bind(syn.Schema, syn.Resolvers)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(rt, bound).ExecuteRequest(context.Background(), doc, "", nil, nil)
}

func directiveNames(list language.DirectiveDefinitionList) []string {
	var out []string
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}

func definitionNames(list language.DefinitionList) []string {
	var out []string
	for _, d := range list {
		out = append(out, d.Name)
	}
	return out
}

func parseQuery(query string) (*language.QueryDocument, error) {
	return language.ParseQuery(query)
}
