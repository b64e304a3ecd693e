package reconcile_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
)

func mustReconcile(t *testing.T, sdl string) *reconcile.Document {
	t.Helper()
	doc, err := language.ParseSchema("test.graphql", sdl)
	require.NoError(t, err)
	return reconcile.Reconcile(doc)
}

func fieldNames(def *language.Definition) []string {
	var names []string
	for _, f := range def.Fields {
		names = append(names, f.Name)
	}
	return names
}

func directiveNames(list language.DirectiveList) []string {
	var names []string
	for _, d := range list {
		names = append(names, d.Name)
	}
	return names
}

func TestBaseFieldsComeBeforeExtensionFields(t *testing.T) {
	doc := mustReconcile(t, `
		extend type User @key(fields: "id") { posts: [String] }
		type User @key(fields: "id") { id: ID! name: String }
		extend type User { other: String }
	`)

	user := doc.Definition("User")
	require.NotNil(t, user)
	if diff := cmp.Diff([]string{"id", "name", "posts", "other"}, fieldNames(user)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"key", "key"}, directiveNames(user.Directives)); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
	require.Empty(t, doc.Schema.Extensions)
	require.False(t, doc.Run("User").Stub())
}

func TestExtensionWithoutBaseBecomesStub(t *testing.T) {
	doc := mustReconcile(t, `
		extend type Query { me: User }
		extend type User @key(fields: "id") { id: ID! @external }
		extend type User @key(fields: "id") { other: String }
	`)

	var names []string
	for _, def := range doc.Schema.Definitions {
		names = append(names, def.Name)
	}
	if diff := cmp.Diff([]string{"Query", "User"}, names); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	require.True(t, doc.Run("User").Stub())
	require.Equal(t, language.Object, doc.Definition("User").Kind)
	if diff := cmp.Diff([]string{"id", "other"}, fieldNames(doc.Definition("User"))); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, "Query", doc.RootTypes.Query)
}

func TestDuplicateFieldsAreKeptForValidation(t *testing.T) {
	doc := mustReconcile(t, `
		extend type User { id: ID! posts: [String] }
		extend type User { id: ID! }
	`)
	if diff := cmp.Diff([]string{"id", "posts", "id"}, fieldNames(doc.Definition("User"))); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestKindMismatchIsRecordedButNotFolded(t *testing.T) {
	doc := mustReconcile(t, `
		type Thing { id: ID }
		extend interface Thing { name: String }
	`)
	run := doc.Run("Thing")
	require.Len(t, run.Bases, 1)
	require.Len(t, run.Extensions, 1)
	require.Equal(t, language.Object, run.Merged.Kind)
	if diff := cmp.Diff([]string{"id"}, fieldNames(run.Merged)); diff != "" {
		t.Fatalf("fields mismatch (-want +got):\n%s", diff)
	}
}

func TestUnionMembersAndInterfacesAreDeduplicated(t *testing.T) {
	doc := mustReconcile(t, `
		interface Node { id: ID! }
		type A implements Node { id: ID! }
		extend type A implements Node
		type B { id: ID! }
		union AB = A
		extend union AB = A | B
	`)
	if diff := cmp.Diff([]string{"Node"}, doc.Definition("A").Interfaces); diff != "" {
		t.Fatalf("interfaces mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"A", "B"}, doc.Definition("AB").Types); diff != "" {
		t.Fatalf("union members mismatch (-want +got):\n%s", diff)
	}
}

func TestRootTypesFromSchemaDefinition(t *testing.T) {
	doc := mustReconcile(t, `
		schema { query: RootQuery mutation: RootMutation }
		type RootQuery { a: String }
		type RootMutation { b: String }
		type Query { ignored: String }
	`)
	if diff := cmp.Diff(reconcile.RootTypes{Query: "RootQuery", Mutation: "RootMutation"}, doc.RootTypes); diff != "" {
		t.Fatalf("root types mismatch (-want +got):\n%s", diff)
	}
}

func TestRootTypesDefaultWhenAbsent(t *testing.T) {
	doc := mustReconcile(t, `type User { id: ID }`)
	require.Equal(t, reconcile.RootTypes{}, doc.RootTypes)
}
