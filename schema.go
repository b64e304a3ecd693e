package fedgraph

import (
	"context"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	executor "github.com/hanpama/fedgraph/internal/executor"
	introspection "github.com/hanpama/fedgraph/internal/introspection"
	language "github.com/hanpama/fedgraph/internal/language"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
	server "github.com/hanpama/fedgraph/internal/server"
)

// Schema is a built federation schema. It is read-only and safe for
// concurrent use.
type Schema struct {
	sdl       string
	types     *schema.Schema
	resolvers resolvers.Map
	entities  []string
	members   []string
	exec      *introspection.Wrapper
	bus       *eventbus.Bus
}

// SDL returns the text Query._service.sdl serves: the input fragments
// concatenated in order.
func (s *Schema) SDL() string { return s.sdl }

// Print renders the final type system, federation additions included.
func (s *Schema) Print() string { return schema.Render(s.types) }

// Types returns the type system. Callers must not modify it.
func (s *Schema) Types() *schema.Schema { return s.types }

// Entities returns the entity type names in declaration order.
func (s *Schema) Entities() []string { return append([]string(nil), s.entities...) }

// EntityUnion returns the members of _Entity. It is empty when the schema
// has no entities or is a gateway view.
func (s *Schema) EntityUnion() []string { return append([]string(nil), s.members...) }

// Resolvers returns a copy of the composed resolvers, _service and _entities
// included, for further composition.
func (s *Schema) Resolvers() Resolvers { return s.resolvers.Clone() }

// Runtime returns the executor runtime with introspection support.
func (s *Schema) Runtime() executor.Runtime { return s.exec.Runtime }

// Execute runs one operation.
func (s *Schema) Execute(ctx context.Context, query, operationName string, variables map[string]any) *Result {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return &Result{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	return executor.NewExecutor(s.exec.Runtime, s.exec.Schema).ExecuteRequest(ctx, doc, operationName, variables, nil)
}

type HandlerOption = server.Option

var (
	HandlerTimeout        = server.WithTimeout
	HandlerPretty         = server.WithPretty
	HandlerMaxBodyBytes   = server.WithMaxBodyBytes
	HandlerCORS           = server.WithCORS
	HandlerForwardHeaders = server.WithForwardHeaders
	HandlerGraphiQL       = server.WithGraphiQL
)

// Handler serves the schema over HTTP. Events go to the bus the schema was
// built with.
func (s *Schema) Handler(opts ...HandlerOption) (*server.Handler, error) {
	opts = append([]HandlerOption{server.WithEventBus(s.bus)}, opts...)
	return server.New(s.exec.Runtime, s.exec.Schema, opts...)
}
