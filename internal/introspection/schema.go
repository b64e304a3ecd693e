package introspection

import (
	"sort"
	"sync"

	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

const introspectionSDL = `
"A GraphQL Schema defines the capabilities of a GraphQL server."
type __Schema {
  description: String
  "A list of all types supported by this server."
  types: [__Type!]!
  "The type that query operations will be rooted at."
  queryType: __Type!
  "If this server supports mutation, the type that mutation operations will be rooted at."
  mutationType: __Type
  "If this server support subscription, the type that subscription operations will be rooted at."
  subscriptionType: __Type
  "A list of all directives supported by this server."
  directives: [__Directive!]!
}

type __Type {
  kind: __TypeKind!
  name: String
  description: String
  specifiedByURL: String
  fields(includeDeprecated: Boolean = false): [__Field!]
  interfaces: [__Type!]
  possibleTypes: [__Type!]
  enumValues(includeDeprecated: Boolean = false): [__EnumValue!]
  inputFields(includeDeprecated: Boolean = false): [__InputValue!]
  ofType: __Type
  isOneOf: Boolean
}

type __Field {
  name: String!
  description: String
  args(includeDeprecated: Boolean = false): [__InputValue!]!
  type: __Type!
  isDeprecated: Boolean!
  deprecationReason: String
}

type __InputValue {
  name: String!
  description: String
  type: __Type!
  defaultValue: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __EnumValue {
  name: String!
  description: String
  isDeprecated: Boolean!
  deprecationReason: String
}

type __Directive {
  name: String!
  description: String
  isRepeatable: Boolean!
  locations: [__DirectiveLocation!]!
  args(includeDeprecated: Boolean = false): [__InputValue!]!
}

enum __TypeKind {
  SCALAR
  OBJECT
  INTERFACE
  UNION
  ENUM
  INPUT_OBJECT
  LIST
  NON_NULL
}

enum __DirectiveLocation {
  QUERY
  MUTATION
  SUBSCRIPTION
  FIELD
  FRAGMENT_DEFINITION
  FRAGMENT_SPREAD
  INLINE_FRAGMENT
  VARIABLE_DEFINITION
  SCHEMA
  SCALAR
  OBJECT
  FIELD_DEFINITION
  ARGUMENT_DEFINITION
  INTERFACE
  UNION
  ENUM
  ENUM_VALUE
  INPUT_OBJECT
  INPUT_FIELD_DEFINITION
}
`

var (
	metaOnce  sync.Once
	metaTypes []*schema.Type
)

// introspectionTypes returns the __ types. They are built once and shared
// read-only between schemas.
func introspectionTypes() []*schema.Type {
	metaOnce.Do(func() {
		doc, err := language.ParseBuiltinSchema("introspection.graphql", introspectionSDL)
		if err != nil {
			panic(err)
		}
		built, err := schema.Build(reconcile.Reconcile(doc))
		if err != nil {
			panic(err)
		}
		for _, name := range built.TypeNames() {
			if len(name) > 2 && name[:2] == "__" {
				metaTypes = append(metaTypes, built.Types[name])
			}
		}
	})
	return metaTypes
}

// extend returns a copy of original with the introspection types and the
// __schema and __type fields on its query root.
func extend(original *schema.Schema) *schema.Schema {
	extended := original.Copy()
	for _, t := range introspectionTypes() {
		extended.AddType(t)
	}
	query := extended.GetQueryType()
	if query == nil {
		return extended
	}
	query = query.Copy()
	query.AddField(schema.NewField("__schema", "Access the current type schema of this server.",
		schema.NonNullType(schema.NamedType("__Schema"))))
	query.AddField(schema.NewField("__type", "Request the type information of a single type.",
		schema.NamedType("__Type")).
		AddArgument(schema.NewInputValue("name", "The name of the type to look up.",
			schema.NonNullType(schema.NamedType("String")))))
	extended.AddType(query)
	return extended
}

func sortedDirectiveNames(sch *schema.Schema) []string {
	names := make([]string, 0, len(sch.Directives))
	for name := range sch.Directives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
