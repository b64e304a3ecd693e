// Package executor executes GraphQL operations breadth first against a
// schema.Schema and a Runtime.
//
// # Model
//
// Fields are either synchronous or asynchronous, as told by schema.Field.Async.
// Synchronous fields resolve and complete in place while the response is
// expanded. Asynchronous fields are queued with the position they will fill;
// when a depth has been expanded, all of them are handed to a single
// Runtime.BatchResolveAsync call, and their completion may queue the next
// depth. resolvers.Bind marks every field backed by a resolver function as
// async, which is how Query._entities reaches the runtime as one batch per
// depth.
//
// Root fields of a mutation run serially: each one, including everything
// queued below it, finishes before the next starts.
//
// # Nulls and errors
//
// A field error is recorded with its path and the locations of the field
// nodes, plus the extensions of errors that implement
//
//	Extensions() map[string]any
//
// A null in a non-null position travels to the nearest enclosing position
// that may hold null. Work queued below a nulled position is dropped. When the
// null reaches a non-null root field, data itself is null.
//
// # Inputs
//
// Variables and arguments are coerced against the schema: built-in scalars
// with the usual rules, enums by value name, input objects field by field with
// defaults. Custom scalars, such as _Any, pass through unchanged. Literal
// values may reference variables at any depth.
package executor
