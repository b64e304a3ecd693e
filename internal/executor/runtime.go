package executor

import (
	"context"
)

// Runtime is what the Executor calls to produce values.
//
// Fields whose schema definition is not Async resolve immediately through
// ResolveSync. Async fields are queued; once a depth of the response has been
// expanded, every queued field goes to a single BatchResolveAsync call and
// the next depth starts only after it returns. Fields below a position that
// was already set to null are never handed to the runtime.
//
// Errors returned from any method become located errors at the field being
// completed. Implementations must be safe for concurrent operations and must
// not modify source or argument values.
type Runtime interface {
	// ResolveSync returns the raw value of a non-async field. (nil, nil) is
	// null.
	ResolveSync(ctx context.Context, objectType string, field string, source any, args map[string]any) (any, error)

	// BatchResolveAsync resolves every async field of one depth. It returns
	// exactly one result per task, in task order; a failing element does not
	// affect the others.
	BatchResolveAsync(ctx context.Context, tasks []AsyncResolveTask) []AsyncResolveResult

	// ResolveType names the concrete object type of a value returned for an
	// interface or union. The name must be a possible type of abstractType.
	ResolveType(ctx context.Context, abstractType string, value any) (string, error)

	// ResolveUnionConcreteValue unwraps a union value before its object type
	// completes it.
	ResolveUnionConcreteValue(ctx context.Context, unionTypeName string, value any) (any, error)

	// ResolveInterfaceConcreteValue unwraps an interface value before its
	// object type completes it.
	ResolveInterfaceConcreteValue(ctx context.Context, interfaceTypeName string, value any) (any, error)

	// SerializeLeafValue turns a scalar or enum value into its JSON-safe
	// response form. Enums serialize to their value name.
	SerializeLeafValue(ctx context.Context, scalarOrEnumTypeName string, value any) (any, error)
}

type AsyncResolveTask struct {
	// ObjectType is the parent object type name.
	ObjectType string
	Field      string
	// Source is the parent value, or the initial value for root fields.
	Source any
	// Args are the coerced field arguments.
	Args map[string]any
}

type AsyncResolveResult struct {
	Value any
	Error error
}
