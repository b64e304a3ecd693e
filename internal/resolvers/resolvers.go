// Package resolvers holds the resolver map a schema is executed with and the
// executor runtime that dispatches to it.
//
// Every function may block. The runtime calls field resolvers on their own
// goroutines, so a resolver that waits on I/O does not hold up its siblings.
package resolvers

import (
	"context"
)

// FieldFunc resolves one field of one parent value.
type FieldFunc func(ctx context.Context, source any, args map[string]any) (any, error)

// ReferenceFunc resolves an entity from its representation.
type ReferenceFunc func(ctx context.Context, representation map[string]any) (any, error)

// LoaderQuery is one entry of a batched reference load.
type LoaderQuery struct {
	// Obj is the representation, including __typename.
	Obj map[string]any
	// Params carries request parameters. It is never nil.
	Params map[string]any
}

// LoaderFunc resolves a batch of representations of one type. It must return
// one value per query, in query order. An element may be an error to fail
// that position alone.
type LoaderFunc func(ctx context.Context, queries []LoaderQuery) ([]any, error)

// ResolveTypeFunc names the concrete object type of an abstract value. An
// empty name means undetermined.
type ResolveTypeFunc func(ctx context.Context, value any) (string, error)

// IsTypeOfFunc reports whether value belongs to the object type.
type IsTypeOfFunc func(ctx context.Context, value any) (bool, error)

// Type is the resolver bag of one named type.
type Type struct {
	Fields map[string]FieldFunc

	// ResolveReference resolves entities one representation at a time.
	ResolveReference ReferenceFunc
	// LoadReferences resolves all representations of the type from one
	// _entities call at once. It takes precedence over ResolveReference.
	LoadReferences LoaderFunc

	ResolveType ResolveTypeFunc
	IsTypeOf    IsTypeOfFunc
}

// Field returns the resolver for name, or nil.
func (t *Type) Field(name string) FieldFunc {
	if t == nil {
		return nil
	}
	return t.Fields[name]
}

// SetField registers f for name.
func (t *Type) SetField(name string, f FieldFunc) *Type {
	if t.Fields == nil {
		t.Fields = make(map[string]FieldFunc)
	}
	t.Fields[name] = f
	return t
}

func (t *Type) clone() *Type {
	out := *t
	out.Fields = make(map[string]FieldFunc, len(t.Fields))
	for k, v := range t.Fields {
		out.Fields[k] = v
	}
	return &out
}

// Map maps type names to their resolvers.
type Map map[string]*Type

// Type returns the resolvers of name, or nil.
func (m Map) Type(name string) *Type {
	if m == nil {
		return nil
	}
	return m[name]
}

// Ensure returns the resolvers of name, creating an empty entry if needed.
func (m Map) Ensure(name string) *Type {
	t := m[name]
	if t == nil {
		t = &Type{}
		m[name] = t
	}
	return t
}

// Clone returns a copy that can be extended without touching m.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for name, t := range m {
		if t != nil {
			out[name] = t.clone()
		}
	}
	return out
}

// Typed carries a value together with its concrete object type name. The
// runtime uses it to resolve abstract types and unwraps it before the
// object's fields are resolved.
type Typed struct {
	Typename string
	Value    any
}

// Unwrap returns the value inside a Typed, or v itself.
func Unwrap(v any) any {
	switch tv := v.(type) {
	case Typed:
		return tv.Value
	case *Typed:
		if tv == nil {
			return nil
		}
		return tv.Value
	}
	return v
}

// Typename returns the type name a value carries, through a Typed or a
// __typename entry.
func Typename(v any) (string, bool) {
	switch tv := v.(type) {
	case Typed:
		return tv.Typename, tv.Typename != ""
	case *Typed:
		if tv != nil && tv.Typename != "" {
			return tv.Typename, true
		}
	case map[string]any:
		if name, ok := tv["__typename"].(string); ok && name != "" {
			return name, true
		}
	}
	return "", false
}
