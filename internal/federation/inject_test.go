package federation_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	federation "github.com/hanpama/fedgraph/internal/federation"
	language "github.com/hanpama/fedgraph/internal/language"
)

func TestInjectAddsMissingDeclarations(t *testing.T) {
	doc := parse(t, `
type Query { me: User }
type User @key(fields: "id") { id: ID! }
`)

	got, err := federation.Inject(doc, federation.InjectOptions{})
	require.NoError(t, err)

	want := []string{"external", "requires", "provides", "key", "extends"}
	if diff := cmp.Diff(want, directiveNames(got.Directives)); diff != "" {
		t.Fatalf("directives mismatch (-want +got):\n%s", diff)
	}
	wantTypes := []string{"Query", "User", "_Any", "_FieldSet", "_Service"}
	if diff := cmp.Diff(wantTypes, definitionNames(got.Definitions)); diff != "" {
		t.Fatalf("definitions mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, doc.Directives, 0, "input document must not change")
	require.Len(t, doc.Definitions, 2, "input document must not change")
}

func TestInjectKeepsUserDeclarations(t *testing.T) {
	doc := parse(t, `
scalar _Any
scalar _FieldSet
directive @key(fields: _FieldSet!) repeatable on OBJECT | INTERFACE
type Query { me: String }
`)

	got, err := federation.Inject(doc, federation.InjectOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{"key", "external", "requires", "provides", "extends"}, directiveNames(got.Directives))
	require.True(t, got.Directives[0].IsRepeatable)
	require.Same(t, doc.Directives[0], got.Directives[0])
	require.Equal(t, []string{"_Any", "_FieldSet", "Query", "_Service"}, definitionNames(got.Definitions))
}

func TestInjectTreatsExtendsAsExtension(t *testing.T) {
	doc := parse(t, `
type Query { me: String }
type Post @key(fields: "id") @extends { id: ID! @external }
type Review { body: String author: String @requires(fields: "id") }
type Book { title: String }
extend type Book { pages: Int }
`)

	got, err := federation.Inject(doc, federation.InjectOptions{})
	require.NoError(t, err)

	require.Equal(t, []string{"Post", "Book"}, definitionNames(got.Extensions))
	require.Equal(t, []string{"Query", "Review", "Book", "_Any", "_FieldSet", "_Service"}, definitionNames(got.Definitions))
}

func TestInjectCollapsesIdenticalDirectives(t *testing.T) {
	sdl := `
directive @custom(reason: String = "x") on FIELD_DEFINITION | OBJECT
directive @custom(reason: String = "x") on OBJECT | FIELD_DEFINITION
type Query { me: String @custom }
`
	for _, gateway := range []bool{false, true} {
		got, err := federation.Inject(parse(t, sdl), federation.InjectOptions{Gateway: gateway})
		require.NoError(t, err)
		n := 0
		for _, d := range got.Directives {
			if d.Name == "custom" {
				n++
			}
		}
		require.Equal(t, 1, n, "gateway=%v", gateway)
	}
}

func TestInjectDuplicateDirectiveConflict(t *testing.T) {
	sdl := `
directive @custom on OBJECT
directive @custom(reason: String) on OBJECT
type Query { me: String }
`
	t.Run("gateway", func(t *testing.T) {
		_, err := federation.Inject(parse(t, sdl), federation.InjectOptions{Gateway: true})
		var ferr *federation.Error
		require.True(t, errors.As(err, &ferr))
		require.Equal(t, federation.CodeDuplicateDirective, ferr.Code())
		require.Equal(t, "custom", ferr.Name)
		require.Contains(t, ferr.Error(), `"custom"`)
	})

	t.Run("subgraph keeps both for validation", func(t *testing.T) {
		got, err := federation.Inject(parse(t, sdl), federation.InjectOptions{})
		require.NoError(t, err)
		require.Equal(t, []string{"custom", "custom"}, directiveNames(got.Directives)[:2])
	})
}

func TestInjectGatewayStripsFederationMachinery(t *testing.T) {
	doc := parse(t, `
scalar _Any
type _Service { sdl: String }
union _Entity = User
directive @key(fields: _FieldSet!) on OBJECT | INTERFACE
directive @custom on FIELD_DEFINITION
type Query { me: User @provides(fields: "name") }
type User @key(fields: "id") {
  id: ID! @external
  name: String @custom
  karma: Int @requires(fields: "id")
}
`)

	got, err := federation.Inject(doc, federation.InjectOptions{Gateway: true})
	require.NoError(t, err)

	require.Equal(t, []string{"custom", "requires"}, directiveNames(got.Directives))
	require.Equal(t, []string{"Query", "User", "_FieldSet"}, definitionNames(got.Definitions))
	require.Empty(t, got.Extensions)

	user := got.Definitions[1]
	require.Empty(t, user.Directives)
	require.Empty(t, user.Fields.ForName("id").Directives)
	require.NotNil(t, user.Fields.ForName("name").Directives.ForName("custom"))
	require.NotNil(t, user.Fields.ForName("karma").Directives.ForName("requires"))
	require.Empty(t, got.Definitions[0].Fields.ForName("me").Directives)

	// The input keeps its applications.
	require.NotNil(t, doc.Definitions.ForName("User").Directives.ForName("key"))
}

func TestInjectMarksStubsBuiltin(t *testing.T) {
	got, err := federation.Inject(&language.SchemaDocument{}, federation.InjectOptions{})
	require.NoError(t, err)
	for _, def := range got.Definitions {
		require.True(t, def.BuiltIn, def.Name)
	}
}
