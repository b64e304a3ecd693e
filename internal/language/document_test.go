package language_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/hanpama/fedgraph/internal/language"
)

func definitionNames(list language.DefinitionList) []string {
	var names []string
	for _, def := range list {
		names = append(names, def.Name)
	}
	return names
}

func TestMergeConcatenatesDefinitionsAndSource(t *testing.T) {
	a, err := language.NewDocument("a.graphql", "type Query { me: User }")
	require.NoError(t, err)
	b, err := language.NewDocument("b.graphql", "type User { id: ID! }\nextend type User { name: String }\n")
	require.NoError(t, err)

	merged := language.Merge(a, b)

	if diff := cmp.Diff("type Query { me: User }type User { id: ID! }\nextend type User { name: String }\n", merged.Source); diff != "" {
		t.Fatalf("source mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Query", "User"}, definitionNames(merged.Schema.Definitions)); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"User"}, definitionNames(merged.Schema.Extensions)); diff != "" {
		t.Fatalf("extensions mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, a.Schema.Definitions, 1, "inputs must not be modified")
}

func TestMergeKeepsDirectiveDeclarationsInOrder(t *testing.T) {
	a, err := language.NewDocument("a", "directive @upper on FIELD_DEFINITION\n")
	require.NoError(t, err)
	b, err := language.NewDocument("b", "directive @upper on FIELD_DEFINITION\ndirective @lower on FIELD_DEFINITION\n")
	require.NoError(t, err)

	merged := language.Merge(a, b)

	var names []string
	for _, d := range merged.Schema.Directives {
		names = append(names, d.Name)
	}
	if diff := cmp.Diff([]string{"upper", "upper", "lower"}, names); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
}

func TestMergeNothing(t *testing.T) {
	merged := language.Merge()
	require.Equal(t, "", merged.Source)
	require.Empty(t, merged.Schema.Definitions)
}

func TestFromSchemaDocumentRecoversSource(t *testing.T) {
	src := "extend type Query {\n  hello: String\n}\n"
	doc, err := language.ParseSchema("parsed.graphql", src)
	require.NoError(t, err)

	got := language.FromSchemaDocument(doc)
	require.Equal(t, src, got.Source)
	require.Same(t, doc, got.Schema)
}

func TestFromSchemaDocumentFormatsHandBuiltDocuments(t *testing.T) {
	doc := &language.SchemaDocument{
		Definitions: language.DefinitionList{
			{Kind: language.Scalar, Name: "Date"},
		},
	}
	got := language.FromSchemaDocument(doc)
	require.Contains(t, got.Source, "scalar Date")
}

func TestParseBuiltinSchemaIsExcludedFromSource(t *testing.T) {
	builtin, err := language.ParseBuiltinSchema("builtin", "scalar _Any\n")
	require.NoError(t, err)
	require.True(t, builtin.Definitions[0].BuiltIn)

	user, err := language.ParseSchema("user", "type Query { a: _Any }\n")
	require.NoError(t, err)
	user.Definitions = append(user.Definitions, builtin.Definitions...)

	require.Equal(t, "type Query { a: _Any }\n", language.FromSchemaDocument(user).Source)
}

func TestParseSchemaReportsSyntaxErrors(t *testing.T) {
	_, err := language.NewDocument("broken", "type Query {")
	require.Error(t, err)
	var gqlErr *language.Error
	require.ErrorAs(t, err, &gqlErr)
}
