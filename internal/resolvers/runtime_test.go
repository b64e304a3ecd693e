package resolvers_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	executor "github.com/hanpama/fedgraph/internal/executor"
	language "github.com/hanpama/fedgraph/internal/language"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSDL = `
type Query {
  me: User
  node(id: ID!): Node
  slow: String
  broken: String
}

interface Node { id: ID! }

type User implements Node {
  id: ID!
  name: String
  age: Int
}

type Post implements Node {
  id: ID!
  title: String
}
`

func execute(t *testing.T, m resolvers.Map, query string) *executor.ExecutionResult {
	t.Helper()
	sch, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	bound, rt := resolvers.Bind(sch, m)
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return executor.NewExecutor(rt, bound).ExecuteRequest(context.Background(), doc, "", nil, nil)
}

func TestBindMarksResolvedFieldsAsync(t *testing.T) {
	sch, err := schema.BuildFromSDL(testSDL)
	require.NoError(t, err)
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{
		"me": func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil },
	}}}

	bound, _ := resolvers.Bind(sch, m)

	require.True(t, bound.Types["Query"].Field("me").Async)
	require.False(t, bound.Types["Query"].Field("slow").Async)
	require.False(t, sch.Types["Query"].Field("me").Async, "input schema must not change")
}

func TestDefaultResolverReadsMapsAndStructs(t *testing.T) {
	type person struct {
		ID   string `json:"id"`
		Name string
		Age  int
	}
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{
		"me": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return &person{ID: "1", Name: "John", Age: 30}, nil
		},
	}}}

	got := execute(t, m, `{ me { id name age } }`)

	want := &executor.ExecutionResult{
		Data:   map[string]any{"me": map[string]any{"id": "1", "name": "John", "age": 30}},
		Errors: []executor.GraphQLError{},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestAbstractResolution(t *testing.T) {
	node := func(ctx context.Context, source any, args map[string]any) (any, error) {
		return map[string]any{"id": args["id"], "title": "Hello"}, nil
	}

	t.Run("ResolveType", func(t *testing.T) {
		m := resolvers.Map{
			"Query": {Fields: map[string]resolvers.FieldFunc{"node": node}},
			"Node": {ResolveType: func(ctx context.Context, value any) (string, error) {
				return "Post", nil
			}},
		}
		got := execute(t, m, `{ node(id: "p1") { __typename id ... on Post { title } } }`)
		want := map[string]any{"node": map[string]any{"__typename": "Post", "id": "p1", "title": "Hello"}}
		if diff := cmp.Diff(want, got.Data); diff != "" {
			t.Fatalf("data mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("IsTypeOf", func(t *testing.T) {
		m := resolvers.Map{
			"Query": {Fields: map[string]resolvers.FieldFunc{"node": node}},
			"User": {IsTypeOf: func(ctx context.Context, value any) (bool, error) {
				_, ok := value.(map[string]any)["name"]
				return ok, nil
			}},
			"Post": {IsTypeOf: func(ctx context.Context, value any) (bool, error) {
				_, ok := value.(map[string]any)["title"]
				return ok, nil
			}},
		}
		got := execute(t, m, `{ node(id: "p1") { __typename } }`)
		require.Equal(t, map[string]any{"node": map[string]any{"__typename": "Post"}}, got.Data)
	})

	t.Run("Typed envelope", func(t *testing.T) {
		m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{
			"node": func(ctx context.Context, source any, args map[string]any) (any, error) {
				return resolvers.Typed{Typename: "User", Value: map[string]any{"id": "u1", "name": "Ann"}}, nil
			},
		}}}
		got := execute(t, m, `{ node(id: "u1") { __typename ... on User { name } } }`)
		require.Equal(t, map[string]any{"node": map[string]any{"__typename": "User", "name": "Ann"}}, got.Data)
	})

	t.Run("unresolvable", func(t *testing.T) {
		m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{"node": node}}}
		got := execute(t, m, `{ node(id: "p1") { id } }`)
		require.Len(t, got.Errors, 1)
		require.Contains(t, got.Errors[0].Message, `Abstract type "Node" must resolve to an Object type at runtime`)
	})
}

func TestBatchRunsResolversConcurrently(t *testing.T) {
	var running, peak atomic.Int32
	slow := func(ctx context.Context, source any, args map[string]any) (any, error) {
		n := running.Add(1)
		defer running.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		return "done", nil
	}
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{
		"slow": slow,
		"me": func(ctx context.Context, source any, args map[string]any) (any, error) {
			time.Sleep(20 * time.Millisecond)
			return map[string]any{"id": "1"}, nil
		},
		"broken": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	}}}

	got := execute(t, m, `{ a: slow b: slow me { id } broken }`)

	want := &executor.ExecutionResult{
		Data: map[string]any{"a": "done", "b": "done", "me": map[string]any{"id": "1"}, "broken": nil},
		Errors: []executor.GraphQLError{
			{Message: "boom", Locations: []executor.Location{{Line: 1, Column: 29}}, Path: executor.Path{"broken"}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, int32(2), peak.Load())
}

func TestPanickingResolverFailsOnlyItsField(t *testing.T) {
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{
		"slow": func(ctx context.Context, source any, args map[string]any) (any, error) { panic("nope") },
		"broken": func(ctx context.Context, source any, args map[string]any) (any, error) {
			return "fine", nil
		},
	}}}

	got := execute(t, m, `{ slow broken }`)

	require.Equal(t, map[string]any{"slow": nil, "broken": "fine"}, got.Data)
	require.Len(t, got.Errors, 1)
	require.Equal(t, "resolver Query.slow panicked: nope", got.Errors[0].Message)
}

func TestCloneIsolatesFields(t *testing.T) {
	m := resolvers.Map{"Query": {Fields: map[string]resolvers.FieldFunc{}}}
	c := m.Clone()
	c.Ensure("Query").SetField("extra", func(ctx context.Context, source any, args map[string]any) (any, error) { return nil, nil })
	c.Ensure("User")

	require.Nil(t, m.Type("Query").Field("extra"))
	require.NotNil(t, c.Type("Query").Field("extra"))
	require.Nil(t, m.Type("User"))
}

func TestSerializeLeafValues(t *testing.T) {
	rt := &resolvers.Runtime{}
	cases := []struct {
		typ  string
		in   any
		want any
	}{
		{"Int", int64(7), 7},
		{"Int", float64(3), 3},
		{"Float", 2, float64(2)},
		{"String", "x", "x"},
		{"ID", 42, "42"},
		{"Boolean", true, true},
		{"Color", "RED", "RED"},
		{"_Any", map[string]any{"a": 1}, map[string]any{"a": 1}},
	}
	for _, c := range cases {
		got, err := rt.SerializeLeafValue(context.Background(), c.typ, c.in)
		require.NoError(t, err, c.typ)
		require.Equal(t, c.want, got, c.typ)
	}
	_, err := rt.SerializeLeafValue(context.Background(), "Int", 1.5)
	require.Error(t, err)
}
