package federation_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	federation "github.com/hanpama/fedgraph/internal/federation"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

const catalogSDL = `
type Query {
  me: User
  topProducts: [Product] @provides(fields: "name")
}

interface Node @key(fields: "id") {
  id: ID!
}

type User implements Node @key(fields: "id") {
  id: ID!
  name: String
}

type Post implements Node {
  id: ID!
  title: String
}

type Product {
  upc: String!
  name: String
}

type Review {
  body: String
  shippingEstimate: Int @requires(fields: "upc")
}

type Book @extends {
  isbn: String!
}

type Plain {
  value: String
}
`

func TestEntityDiscovery(t *testing.T) {
	sch := buildSchema(t, catalogSDL, false)

	entities := federation.EntityTypes(sch)
	want := []string{"Node", "User", "Product", "Review", "Book"}
	require.ElementsMatch(t, want, entities)
	require.NotContains(t, entities, "Post")

	members := federation.EntityMembers(sch, entities)
	require.ElementsMatch(t, []string{"User", "Post", "Product", "Review", "Book"}, members)
	require.NotContains(t, members, "Node")
	require.NotContains(t, members, "Plain")
	require.NotContains(t, members, "Query")
}

func TestSynthesizeAddsFederationSurface(t *testing.T) {
	syn := synthesize(t, catalogSDL, nil, federation.SynthesizeOptions{})

	query := syn.Schema.GetQueryType()
	require.Equal(t, "_Service!", query.Field("_service").Type.String())
	entities := query.Field("_entities")
	require.Equal(t, "[_Entity]!", entities.Type.String())
	require.Len(t, entities.Arguments, 1)
	require.Equal(t, "representations", entities.Arguments[0].Name)
	require.Equal(t, "[_Any!]!", entities.Arguments[0].Type.String())

	union := syn.Schema.Types["_Entity"]
	require.Equal(t, schema.TypeKindUnion, union.Kind)
	if diff := cmp.Diff(syn.Members, union.PossibleTypes); diff != "" {
		t.Fatalf("_Entity members mismatch (-want +got):\n%s", diff)
	}
	require.NotNil(t, syn.Resolvers.Type("Query").Field("_service"))
	require.NotNil(t, syn.Resolvers.Type("Query").Field("_entities"))
}

func TestSynthesizeWithoutEntities(t *testing.T) {
	sdl := `type Query { hello: String }`

	syn := synthesize(t, sdl, nil, federation.SynthesizeOptions{})

	require.Empty(t, syn.Entities)
	require.Nil(t, syn.Schema.Types["_Entity"])
	require.Nil(t, syn.Schema.GetQueryType().Field("_entities"))
	require.NotNil(t, syn.Schema.GetQueryType().Field("_service"))
}

func TestSynthesizeServesSDL(t *testing.T) {
	sdl := "type Query { hello: String }\n"
	syn := synthesize(t, sdl, nil, federation.SynthesizeOptions{SDL: "served text"})

	got := execute(t, syn, `{ _service { sdl } }`)

	require.Empty(t, got.Errors)
	require.Equal(t, map[string]any{"_service": map[string]any{"sdl": "served text"}}, got.Data)
}

func TestSynthesizeCreatesMissingQuery(t *testing.T) {
	sdl := `
type User @key(fields: "id") {
  id: ID!
}
`
	syn := synthesize(t, sdl, nil, federation.SynthesizeOptions{})

	require.Equal(t, "Query", syn.Schema.QueryType)
	query := syn.Schema.GetQueryType()
	require.Equal(t, []string{"_service", "_entities"}, fieldNames(query))
}

func TestSynthesizeUsesDeclaredQueryRoot(t *testing.T) {
	sdl := `
schema { query: RootQuery }
type RootQuery { hello: String }
type User @key(fields: "id") { id: ID! }
`
	syn := synthesize(t, sdl, nil, federation.SynthesizeOptions{})

	require.Nil(t, syn.Schema.Types["Query"])
	require.Equal(t, []string{"hello", "_service", "_entities"}, fieldNames(syn.Schema.Types["RootQuery"]))
	require.NotNil(t, syn.Resolvers.Type("RootQuery").Field("_entities"))
}

func TestSynthesizeGatewayAddsNothing(t *testing.T) {
	sch := buildSchema(t, catalogSDL, true)

	syn, err := federation.Synthesize(sch, nil, federation.SynthesizeOptions{Gateway: true})
	require.NoError(t, err)

	require.Nil(t, syn.Schema.GetQueryType().Field("_service"))
	require.Nil(t, syn.Schema.GetQueryType().Field("_entities"))
	require.Nil(t, syn.Schema.Types["_Entity"])
	require.Empty(t, syn.Members)
}

func TestSynthesizeKeepsInputsIntact(t *testing.T) {
	sch := buildSchema(t, catalogSDL, false)
	hello := func(ctx context.Context, source any, args map[string]any) (any, error) { return "hi", nil }
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{"me": hello}}}

	syn, err := federation.Synthesize(sch, m, federation.SynthesizeOptions{})
	require.NoError(t, err)

	require.Nil(t, sch.GetQueryType().Field("_service"))
	require.Nil(t, sch.Types["_Entity"])
	require.Nil(t, m.Type("Query").Field("_service"))
	require.Len(t, m.Type("Query").Fields, 1)
	require.NotNil(t, syn.Resolvers.Type("Query").Field("me"))
}

func TestSynthesizeKeepsDeclaredEntityUnion(t *testing.T) {
	sdl := `
type Query { hello: String }
type User @key(fields: "id") { id: ID! }
type Post @key(fields: "id") { id: ID! }
union _Entity = User
`
	syn := synthesize(t, sdl, nil, federation.SynthesizeOptions{})

	require.Equal(t, []string{"User"}, syn.Schema.Types["_Entity"].PossibleTypes)
	require.Equal(t, []string{"User", "Post"}, syn.Members)
}

func TestSynthesizeRejectsDeclaredServiceField(t *testing.T) {
	sdl := `
type Query { _service: _Service! }
`
	_, err := federation.Synthesize(buildSchema(t, sdl, false), nil, federation.SynthesizeOptions{})

	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{`Field "Query._service" can only be defined once.`}, verr.Messages())
}

func fieldNames(t *schema.Type) []string {
	var out []string
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}
