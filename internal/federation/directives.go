package federation

import (
	language "github.com/hanpama/fedgraph/internal/language"
)

// Names of the federation directives and types.
const (
	DirectiveKey      = "key"
	DirectiveExternal = "external"
	DirectiveRequires = "requires"
	DirectiveProvides = "provides"
	DirectiveExtends  = "extends"

	TypeAny      = "_Any"
	TypeFieldSet = "_FieldSet"
	TypeService  = "_Service"
	TypeEntity   = "_Entity"

	FieldService  = "_service"
	FieldEntities = "_entities"
)

const federationSDL = `
scalar _Any
scalar _FieldSet

type _Service {
  sdl: String
}

directive @external on FIELD_DEFINITION
directive @requires(fields: _FieldSet!) on FIELD_DEFINITION
directive @provides(fields: _FieldSet!) on FIELD_DEFINITION
directive @key(fields: _FieldSet!) on OBJECT | INTERFACE
directive @extends on OBJECT | INTERFACE
`

// gatewayStripped are the directives a gateway view drops along with their
// applications.
var gatewayStripped = map[string]bool{
	DirectiveKey:      true,
	DirectiveExternal: true,
	DirectiveProvides: true,
	DirectiveExtends:  true,
}

// gatewayStrippedTypes are the types a gateway view drops.
var gatewayStrippedTypes = map[string]bool{
	TypeAny:     true,
	TypeService: true,
	TypeEntity:  true,
}

// federationStubs parses a fresh copy of the federation declarations, so no
// AST node is shared between builds.
func federationStubs() *language.SchemaDocument {
	doc, err := language.ParseBuiltinSchema("federation.graphql", federationSDL)
	if err != nil {
		panic(err)
	}
	return doc
}

// sameSignature reports whether two directive declarations agree on
// arguments, locations and repeatability.
func sameSignature(a, b *language.DirectiveDefinition) bool {
	if a.Name != b.Name || a.IsRepeatable != b.IsRepeatable {
		return false
	}
	if len(a.Arguments) != len(b.Arguments) || len(a.Locations) != len(b.Locations) {
		return false
	}
	for i, arg := range a.Arguments {
		other := b.Arguments[i]
		if arg.Name != other.Name || arg.Type.String() != other.Type.String() {
			return false
		}
		if literal(arg.DefaultValue) != literal(other.DefaultValue) {
			return false
		}
	}
	locations := make(map[language.DirectiveLocation]bool, len(a.Locations))
	for _, loc := range a.Locations {
		locations[loc] = true
	}
	for _, loc := range b.Locations {
		if !locations[loc] {
			return false
		}
	}
	return true
}

func literal(v *language.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}
