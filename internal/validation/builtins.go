package validation

import (
	"sync"

	language "github.com/hanpama/fedgraph/internal/language"
)

const builtinDirectiveSDL = `
directive @deprecated(reason: String = "No longer supported") on FIELD_DEFINITION | ARGUMENT_DEFINITION | INPUT_FIELD_DEFINITION | ENUM_VALUE
directive @specifiedBy(url: String!) on SCALAR
directive @oneOf on INPUT_OBJECT
directive @include(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
directive @skip(if: Boolean!) on FIELD | FRAGMENT_SPREAD | INLINE_FRAGMENT
`

var (
	builtinOnce sync.Once
	builtinDefs language.DirectiveDefinitionList
)

// builtinDirectives returns the directives every schema knows without
// declaring them.
func builtinDirectives() language.DirectiveDefinitionList {
	builtinOnce.Do(func() {
		doc, err := language.ParseBuiltinSchema("builtin.graphql", builtinDirectiveSDL)
		if err != nil {
			panic(err)
		}
		builtinDefs = doc.Directives
	})
	return builtinDefs
}
