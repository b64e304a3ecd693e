package executor

import (
	"context"
	"fmt"
	"sync"
)

// MockResolver resolves one field value for MockRuntime.
type MockResolver func(ctx context.Context, source any, args map[string]any) (any, error)

// NewMockValueResolver always returns val.
func NewMockValueResolver(val any) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return val, nil
	}
}

// NewMockErrorResolver always fails with err.
func NewMockErrorResolver(err error) MockResolver {
	return func(ctx context.Context, source any, args map[string]any) (any, error) {
		return nil, err
	}
}

// Call records one field resolution made through MockRuntime. Batch is 0 for
// ResolveSync and numbers BatchResolveAsync calls from 1 otherwise.
type Call struct {
	Coordinate string
	Source     any
	Args       map[string]any
	Batch      int
}

// MockRuntime is a Runtime backed by resolvers keyed "Type.field". Fields
// without a resolver resolve to null. Abstract values resolve through their
// "__typename" entry unless TypeOf is set.
type MockRuntime struct {
	// TypeOf replaces the "__typename" lookup.
	TypeOf func(value any) (string, error)
	// Serialize replaces the identity leaf serialization.
	Serialize func(typeName string, value any) (any, error)

	mu        sync.Mutex
	resolvers map[string]MockResolver
	calls     []Call
	batches   int
}

func NewMockRuntime(resolvers map[string]MockResolver) *MockRuntime {
	m := &MockRuntime{resolvers: make(map[string]MockResolver, len(resolvers))}
	for k, v := range resolvers {
		m.resolvers[k] = v
	}
	return m
}

func (m *MockRuntime) SetResolver(objectType, field string, r MockResolver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resolvers[objectType+"."+field] = r
}

func (m *MockRuntime) resolve(ctx context.Context, coordinate string, source any, args map[string]any, batch int) (any, error) {
	m.mu.Lock()
	r := m.resolvers[coordinate]
	m.calls = append(m.calls, Call{Coordinate: coordinate, Source: source, Args: args, Batch: batch})
	m.mu.Unlock()
	if r == nil {
		return nil, nil
	}
	return r(ctx, source, args)
}

func (m *MockRuntime) ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error) {
	return m.resolve(ctx, objectType+"."+field, source, args, 0)
}

func (m *MockRuntime) BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult {
	m.mu.Lock()
	m.batches++
	batch := m.batches
	m.mu.Unlock()

	results := make([]AsyncResolveResult, len(tasks))
	for i, t := range tasks {
		v, err := m.resolve(ctx, t.ObjectType+"."+t.Field, t.Source, t.Args, batch)
		results[i] = AsyncResolveResult{Value: v, Error: err}
	}
	return results
}

func (m *MockRuntime) ResolveType(ctx context.Context, abstractType string, value any) (string, error) {
	if m.TypeOf != nil {
		return m.TypeOf(value)
	}
	if obj, ok := value.(map[string]any); ok {
		if name, ok := obj["__typename"].(string); ok {
			return name, nil
		}
	}
	return "", fmt.Errorf("cannot resolve the type of %T for %s", value, abstractType)
}

func (m *MockRuntime) ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error) {
	return value, nil
}

func (m *MockRuntime) SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error) {
	if m.Serialize != nil {
		return m.Serialize(scalarOrEnumTypeName, value)
	}
	return value, nil
}

// Calls returns the recorded calls in order.
func (m *MockRuntime) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}
