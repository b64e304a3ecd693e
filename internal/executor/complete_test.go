package executor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	executor "github.com/hanpama/fedgraph/internal/executor"
)

const viewerSDL = `
type Query {
  viewer: Viewer
  required: Viewer!
}

type Viewer {
  name: String!
  friends: [Friend!]
}

type Friend {
  name: String!
  nickname: String
}
`

func TestNullPropagation(t *testing.T) {
	boom := errors.New("boom")
	viewer := executor.NewMockValueResolver(map[string]any{})

	tests := []struct {
		name      string
		async     []string
		resolvers map[string]executor.MockResolver
		query     string
		wantData  any
		want      []executor.GraphQLError
		notCalled string
	}{
		{
			name: "sync error in non-null field nulls the object",
			resolvers: map[string]executor.MockResolver{
				"Query.viewer": viewer,
				"Viewer.name":  executor.NewMockErrorResolver(boom),
			},
			query:    `{ viewer { name } }`,
			wantData: map[string]any{"viewer": nil},
			want:     []executor.GraphQLError{{Message: "boom", Path: executor.Path{"viewer", "name"}}},
		},
		{
			name:  "null list item nulls the nearest nullable list",
			async: []string{"Viewer.friends"},
			resolvers: map[string]executor.MockResolver{
				"Query.viewer":   viewer,
				"Viewer.name":    executor.NewMockValueResolver("me"),
				"Viewer.friends": executor.NewMockValueResolver([]any{map[string]any{"name": "a"}, map[string]any{}}),
				"Friend.name":    prop("name"),
			},
			query:    `{ viewer { name friends { name } } }`,
			wantData: map[string]any{"viewer": map[string]any{"name": "me", "friends": nil}},
			want: []executor.GraphQLError{{
				Message: "Cannot return null for non-nullable field Friend.name.",
				Path:    executor.Path{"viewer", "friends", 1, "name"},
			}},
		},
		{
			name: "non-null root field nulls data",
			resolvers: map[string]executor.MockResolver{
				"Query.required": executor.NewMockValueResolver(nil),
			},
			query:    `{ viewer { name } required { name } }`,
			wantData: nil,
			want: []executor.GraphQLError{{
				Message: "Cannot return null for non-nullable field Query.required.",
				Path:    executor.Path{"required"},
			}},
		},
		{
			name:  "async error in non-null field drops its siblings",
			async: []string{"Viewer.name", "Viewer.friends"},
			resolvers: map[string]executor.MockResolver{
				"Query.viewer":   viewer,
				"Viewer.name":    executor.NewMockErrorResolver(boom),
				"Viewer.friends": executor.NewMockValueResolver([]any{map[string]any{"name": "a"}}),
				"Friend.name":    prop("name"),
			},
			query:     `{ viewer { name friends { name } } }`,
			wantData:  map[string]any{"viewer": nil},
			want:      []executor.GraphQLError{{Message: "boom", Path: executor.Path{"viewer", "name"}}},
			notCalled: "Friend.name",
		},
		{
			name:  "queued fields below a nulled object never run",
			async: []string{"Viewer.friends"},
			resolvers: map[string]executor.MockResolver{
				"Query.viewer":   viewer,
				"Viewer.name":    executor.NewMockValueResolver(nil),
				"Viewer.friends": executor.NewMockValueResolver([]any{}),
			},
			query:    `{ viewer { friends { name } name } }`,
			wantData: map[string]any{"viewer": nil},
			want: []executor.GraphQLError{{
				Message: "Cannot return null for non-nullable field Viewer.name.",
				Path:    executor.Path{"viewer", "name"},
			}},
			notCalled: "Viewer.friends",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sch := build(t, viewerSDL, tt.async...)
			rt := executor.NewMockRuntime(tt.resolvers)

			got := run(t, sch, rt, tt.query, nil)

			if diff := cmp.Diff(tt.wantData, got.Data); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.want, got.Errors, ignoreLocations); diff != "" {
				t.Fatalf("errors mismatch (-want +got):\n%s", diff)
			}
			if tt.notCalled != "" {
				for _, c := range rt.Calls() {
					require.NotEqual(t, tt.notCalled, c.Coordinate)
				}
			}
		})
	}
}

type codedError struct{ code string }

func (e codedError) Error() string              { return "denied" }
func (e codedError) Extensions() map[string]any { return map[string]any{"code": e.code} }

func TestErrorsCarryLocationsAndExtensions(t *testing.T) {
	sch := build(t, reviewsSDL, "Query.me", "User.reviews")
	forbidden := codedError{code: "FORBIDDEN"}
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.me": executor.NewMockValueResolver(ada),
		"User.reviews": executor.NewMockValueResolver([]any{
			map[string]any{"body": "ok"},
			map[string]any{"body": fmt.Errorf("review r2: %w", forbidden)},
		}),
		"Review.body": prop("body"),
	})

	got := run(t, sch, rt, `query {
  me {
    reviews {
      body
    }
  }
}`, nil)

	want := &executor.ExecutionResult{
		Data: map[string]any{"me": map[string]any{"reviews": []any{
			map[string]any{"body": "ok"},
			map[string]any{"body": nil},
		}}},
		Errors: []executor.GraphQLError{{
			Message:    "review r2: denied",
			Locations:  []executor.Location{{Line: 4, Column: 7}},
			Path:       executor.Path{"me", "reviews", 1, "body"},
			Extensions: map[string]any{"code": "FORBIDDEN"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ExecutionResult mismatch (-want +got):\n%s", diff)
	}
}

func TestMergedFieldsReportEveryLocation(t *testing.T) {
	sch := build(t, reviewsSDL)
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.me": executor.NewMockErrorResolver(codedError{code: "UNAUTHENTICATED"}),
	})

	got := run(t, sch, rt, "{ me { id }\n  me { name } }", nil)

	want := []executor.GraphQLError{{
		Message:    "denied",
		Locations:  []executor.Location{{Line: 1, Column: 3}, {Line: 2, Column: 3}},
		Path:       executor.Path{"me"},
		Extensions: map[string]any{"code": "UNAUTHENTICATED"},
	}}
	if diff := cmp.Diff(want, got.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownFieldIsReported(t *testing.T) {
	sch := build(t, reviewsSDL)
	got := run(t, sch, reviewsRuntime(), `{ me { id } nope }`, nil)

	require.Equal(t, map[string]any{"me": map[string]any{"id": "1"}}, got.Data)
	want := []executor.GraphQLError{{Message: `Cannot query field "nope" on type "Query".`, Path: executor.Path{"nope"}}}
	if diff := cmp.Diff(want, got.Errors, ignoreLocations); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

const searchSDL = `
type Query {
  search: [SearchResult]
  node: Node
}

union SearchResult = User | Review

interface Node {
  id: ID!
}

type User implements Node {
  id: ID!
  name: String
}

type Review implements Node {
  id: ID!
  body: String
}
`

func searchRuntime() *executor.MockRuntime {
	return executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.search": executor.NewMockValueResolver([]any{
			map[string]any{"__typename": "User", "id": "1", "name": "Ada"},
			map[string]any{"__typename": "Review", "id": "r1", "body": "Great"},
		}),
		"Query.node":  executor.NewMockValueResolver(map[string]any{"__typename": "Review", "id": "r1", "body": "Great"}),
		"User.id":     prop("id"),
		"User.name":   prop("name"),
		"Review.id":   prop("id"),
		"Review.body": prop("body"),
	})
}

func TestAbstractTypes(t *testing.T) {
	tests := []struct {
		name  string
		query string
		vars  map[string]any
		want  any
	}{
		{
			name:  "union members",
			query: `{ search { __typename ... on User { name } ... on Review { body } } }`,
			want: map[string]any{"search": []any{
				map[string]any{"__typename": "User", "name": "Ada"},
				map[string]any{"__typename": "Review", "body": "Great"},
			}},
		},
		{
			name:  "interface condition inside a union",
			query: `{ search { ... on Node { id } } }`,
			want: map[string]any{"search": []any{
				map[string]any{"id": "1"},
				map[string]any{"id": "r1"},
			}},
		},
		{
			name:  "named fragment on interface",
			query: `{ node { ...ids ... on Review { body } } } fragment ids on Node { id }`,
			want:  map[string]any{"node": map[string]any{"id": "r1", "body": "Great"}},
		},
		{
			name:  "skip and include",
			query: `query ($full: Boolean!) { node { id ... on Review @include(if: $full) { body } __typename @skip(if: $full) } }`,
			vars:  map[string]any{"full": false},
			want:  map[string]any{"node": map[string]any{"id": "r1", "__typename": "Review"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := run(t, build(t, searchSDL), searchRuntime(), tt.query, tt.vars)
			require.Empty(t, got.Errors)
			if diff := cmp.Diff(tt.want, got.Data); diff != "" {
				t.Fatalf("data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAbstractTypeMustBePossible(t *testing.T) {
	rt := searchRuntime()
	rt.SetResolver("Query", "node", executor.NewMockValueResolver(map[string]any{"__typename": "Query"}))

	got := run(t, build(t, searchSDL), rt, `{ node { id } }`, nil)

	require.Equal(t, map[string]any{"node": nil}, got.Data)
	want := []executor.GraphQLError{{Message: `Runtime Object type "Query" is not a possible type for "Node".`, Path: executor.Path{"node"}}}
	if diff := cmp.Diff(want, got.Errors, ignoreLocations); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

type user struct{ Name string }

func TestLeafValuesAndTypedNils(t *testing.T) {
	sch := build(t, `
type Query {
  status: Status
  stars: [Int]
  owner: User
}

enum Status { DRAFT PUBLISHED }

type User { name: String }
`)
	rt := executor.NewMockRuntime(map[string]executor.MockResolver{
		"Query.status": executor.NewMockValueResolver(1),
		"Query.stars":  executor.NewMockValueResolver([]int{5, -1}),
		"Query.owner":  executor.NewMockValueResolver((*user)(nil)),
	})
	rt.Serialize = func(typeName string, value any) (any, error) {
		switch typeName {
		case "Status":
			return []string{"DRAFT", "PUBLISHED"}[value.(int)], nil
		case "Int":
			if value.(int) < 0 {
				return nil, errors.New("Int cannot represent negative stars")
			}
		}
		return value, nil
	}

	got := run(t, sch, rt, `{ status stars owner { name } }`, nil)

	require.Equal(t, map[string]any{
		"status": "PUBLISHED",
		"stars":  []any{5, nil},
		"owner":  nil,
	}, got.Data)
	want := []executor.GraphQLError{{Message: "Int cannot represent negative stars", Path: executor.Path{"stars", 1}}}
	if diff := cmp.Diff(want, got.Errors, ignoreLocations); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
}

func TestNonListValueForListField(t *testing.T) {
	sch := build(t, searchSDL)
	rt := searchRuntime()
	rt.SetResolver("Query", "search", executor.NewMockValueResolver("not a list"))

	got := run(t, sch, rt, `{ search { __typename } }`, nil)

	require.Equal(t, map[string]any{"search": nil}, got.Data)
	require.Len(t, got.Errors, 1)
	require.Equal(t, `Expected Iterable, but did not find one for field "Query.search".`, got.Errors[0].Message)
}
