package schema

// builtinScalars lists the scalars every schema has, in introspection order.
var builtinScalars = []struct{ name, description string }{
	{"String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences."},
	{"Int", "The `Int` scalar type represents non-fractional signed whole numeric values."},
	{"Float", "The `Float` scalar type represents signed double-precision fractional values."},
	{"Boolean", "The `Boolean` scalar type represents `true` or `false`."},
	{"ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching."},
}

func isBuiltinScalar(name string) bool {
	for _, s := range builtinScalars {
		if s.name == name {
			return true
		}
	}
	return false
}

// isBuiltinDirective reports the executable directives added by addBuiltins.
func isBuiltinDirective(name string) bool {
	return name == "include" || name == "skip"
}

// addBuiltins gives s its own copies of the built-in scalars and the @include
// and @skip directives, so schemas built concurrently share nothing.
func addBuiltins(s *Schema) {
	for _, sc := range builtinScalars {
		s.AddType(&Type{Name: sc.name, Kind: TypeKindScalar, Description: sc.description})
	}
	s.AddDirective(conditionDirective("include",
		"Directs the executor to include this field or fragment only when the `if` argument is true.",
		"Included when true."))
	s.AddDirective(conditionDirective("skip",
		"Directs the executor to skip this field or fragment when the `if` argument is true.",
		"Skipped when true."))
}

func conditionDirective(name, description, ifDescription string) *Directive {
	return &Directive{
		Name:        name,
		Description: description,
		Arguments: []*InputValue{{
			Name:        "if",
			Description: ifDescription,
			Type:        NonNullType(NamedType("Boolean")),
		}},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}
