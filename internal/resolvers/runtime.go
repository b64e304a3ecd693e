package resolvers

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"golang.org/x/sync/errgroup"

	executor "github.com/hanpama/fedgraph/internal/executor"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Runtime implements executor.Runtime on top of a resolver Map.
// Invariants and boundaries:
//   - Fields with a FieldFunc are async: Bind marks them so the executor hands
//     them to BatchResolveAsync. Every other field is read from its parent
//     value by ResolveSync without I/O.
//   - Concurrency: BatchResolveAsync groups tasks by (objectType, field) and
//     runs every task on its own goroutine, bounded by WithConcurrency.
//   - Determinism: results preserve input ordering; partial success is
//     supported.
//   - The map is read-only after Bind.
type Runtime struct {
	schema      *schema.Schema
	resolvers   Map
	concurrency int
}

var _ executor.Runtime = (*Runtime)(nil)

type Option func(*Runtime)

// WithConcurrency bounds the number of resolver goroutines per batch. Zero or
// less means unbounded.
func WithConcurrency(n int) Option {
	return func(r *Runtime) { r.concurrency = n }
}

// Bind returns a copy of sch whose fields backed by a FieldFunc are marked
// async, and a runtime dispatching to m. Neither sch nor m is modified.
func Bind(sch *schema.Schema, m Map, opts ...Option) (*schema.Schema, *Runtime) {
	out := sch.Copy()
	for _, name := range out.TypeNames() {
		t := out.Types[name]
		rt := m.Type(name)
		if rt == nil || len(rt.Fields) == 0 || t.Kind != schema.TypeKindObject {
			continue
		}
		var bound *schema.Type
		for i, f := range t.Fields {
			if rt.Fields[f.Name] == nil || f.Async {
				continue
			}
			if bound == nil {
				bound = t.Copy()
			}
			fc := *f
			fc.Async = true
			bound.Fields[i] = &fc
		}
		if bound != nil {
			out.AddType(bound)
		}
	}
	r := &Runtime{schema: out, resolvers: m}
	for _, opt := range opts {
		opt(r)
	}
	return out, r
}

// Schema returns the bound schema.
func (r *Runtime) Schema() *schema.Schema { return r.schema }

// ResolveSync resolves a field without a FieldFunc by reading it from the
// parent value. A FieldFunc registered for a field not marked async is called
// inline.
func (r *Runtime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	if f := r.resolvers.Type(objectType).Field(field); f != nil {
		return call(ctx, objectType, field, f, source, args)
	}
	return DefaultResolve(source, field), nil
}

// BatchResolveAsync runs the FieldFuncs of one execution depth.
func (r *Runtime) BatchResolveAsync(ctx context.Context, tasks []executor.AsyncResolveTask) []executor.AsyncResolveResult {
	results := make([]executor.AsyncResolveResult, len(tasks))
	if len(tasks) == 0 {
		return results
	}
	// Group by objectType and field
	type groupKey struct {
		objectType string
		field      string
	}
	type group struct {
		objectType string
		field      string
		idxs       []int
	}
	groups := []group{}
	idxByKey := map[groupKey]int{}
	for i, t := range tasks {
		k := groupKey{objectType: t.ObjectType, field: t.Field}
		if gi, ok := idxByKey[k]; ok {
			groups[gi].idxs = append(groups[gi].idxs, i)
		} else {
			idxByKey[k] = len(groups)
			groups = append(groups, group{objectType: t.ObjectType, field: t.Field, idxs: []int{i}})
		}
	}

	var g errgroup.Group
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}
	for _, grp := range groups {
		f := r.resolvers.Type(grp.objectType).Field(grp.field)
		for _, idx := range grp.idxs {
			task := tasks[idx]
			if f == nil {
				results[idx] = executor.AsyncResolveResult{Value: DefaultResolve(task.Source, task.Field)}
				continue
			}
			g.Go(func() error {
				v, err := call(ctx, task.ObjectType, task.Field, f, task.Source, task.Args)
				results[idx] = executor.AsyncResolveResult{Value: v, Error: err}
				return nil
			})
		}
	}
	_ = g.Wait()
	return results
}

// ResolveType names the concrete type of an abstract value: a Typed envelope
// first, then the abstract type's ResolveType, then IsTypeOf of each possible
// type in declaration order, then a __typename entry.
func (r *Runtime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if tv, ok := value.(Typed); ok && tv.Typename != "" {
		return tv.Typename, nil
	}
	inner := Unwrap(value)
	if at := r.resolvers.Type(abstractType); at != nil && at.ResolveType != nil {
		name, err := at.ResolveType(ctx, inner)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
	if t := r.schema.Types[abstractType]; t != nil {
		for _, candidate := range t.PossibleTypes {
			ct := r.resolvers.Type(candidate)
			if ct == nil || ct.IsTypeOf == nil {
				continue
			}
			ok, err := ct.IsTypeOf(ctx, inner)
			if err != nil {
				return "", err
			}
			if ok {
				return candidate, nil
			}
		}
	}
	if name, ok := Typename(value); ok {
		return name, nil
	}
	return "", fmt.Errorf("Abstract type %q must resolve to an Object type at runtime. Either the %q type should provide a ResolveType function or each possible type should provide an IsTypeOf function.", abstractType, abstractType)
}

func (r *Runtime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return Unwrap(value), nil
}

func (r *Runtime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return Unwrap(value), nil
}

// SerializeLeafValue coerces built-in scalars and passes enums and custom
// scalars through.
func (r *Runtime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	return serializeLeaf(scalarOrEnumTypeName, value)
}

// call invokes f, turning a panic into an error for that field alone.
func call(ctx context.Context, objectType, field string, f FieldFunc, source any, args map[string]any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("resolver %s.%s panicked: %v", objectType, field, p)
		}
	}()
	return f(ctx, Unwrap(source), args)
}

// DefaultResolve reads field from source: a map entry, or an exported struct
// field matched by json tag or case-insensitive name.
func DefaultResolve(source any, field string) any {
	source = Unwrap(source)
	if source == nil {
		return nil
	}
	if m, ok := source.(map[string]any); ok {
		return m[field]
	}
	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil
		}
		return v.Interface()
	case reflect.Struct:
		rt := rv.Type()
		for i := 0; i < rt.NumField(); i++ {
			sf := rt.Field(i)
			if !sf.IsExported() {
				continue
			}
			name := strings.Split(sf.Tag.Get("json"), ",")[0]
			if name == field || (name == "" && strings.EqualFold(sf.Name, field)) {
				return rv.Field(i).Interface()
			}
		}
	}
	return nil
}
