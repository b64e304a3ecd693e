// Package fedgraph builds executable GraphQL schemas that take part in a
// federated graph.
//
// A build merges one or more schema fragments, adds the federation
// declarations the fragments do not declare themselves, folds type
// extensions, validates the result and synthesizes the Query._service and
// Query._entities fields:
//
//	s, err := fedgraph.BuildFederationSchema([]fedgraph.Source{
//		fedgraph.Text(`extend type Query { me: User }`),
//		fedgraph.Text(`type User @key(fields: "id") { id: ID! name: String }`),
//	}, fedgraph.WithResolvers(fedgraph.Resolvers{
//		"User": {ResolveReference: loadUser},
//	}))
//
// In gateway mode the federation machinery is stripped instead, leaving the
// view of the schema a gateway composes.
package fedgraph

import (
	"go.uber.org/zap"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	executor "github.com/hanpama/fedgraph/internal/executor"
	language "github.com/hanpama/fedgraph/internal/language"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
)

type (
	// Resolvers maps type names to their resolvers.
	Resolvers = resolvers.Map
	// TypeResolvers holds the resolvers of one type.
	TypeResolvers   = resolvers.Type
	FieldFunc       = resolvers.FieldFunc
	ReferenceFunc   = resolvers.ReferenceFunc
	LoaderFunc      = resolvers.LoaderFunc
	LoaderQuery     = resolvers.LoaderQuery
	ResolveTypeFunc = resolvers.ResolveTypeFunc
	IsTypeOfFunc    = resolvers.IsTypeOfFunc
	// Typed tags a value with its concrete object type.
	Typed = resolvers.Typed

	Result       = executor.ExecutionResult
	GraphQLError = executor.GraphQLError

	// EventBus receives build, request and _entities events.
	EventBus = eventbus.Bus
)

// Source is one schema fragment.
type Source struct {
	name   string
	text   string
	parsed *language.SchemaDocument
}

// Text is a fragment given as schema definition language.
func Text(sdl string) Source { return Source{text: sdl} }

// NamedText is a fragment whose name shows up in error locations.
func NamedText(name, sdl string) Source { return Source{name: name, text: sdl} }

// Parsed is a fragment that was already parsed with gqlparser. Its text is
// recovered from the sources its nodes point at.
func Parsed(doc *language.SchemaDocument) Source { return Source{parsed: doc} }

func (s Source) document(index int) (*language.Document, error) {
	if s.parsed != nil {
		return language.FromSchemaDocument(s.parsed), nil
	}
	name := s.name
	if name == "" {
		name = fragmentName(index)
	}
	return language.NewDocument(name, s.text)
}

type Option func(*config)

type config struct {
	gateway     bool
	resolvers   Resolvers
	logger      *zap.Logger
	bus         *eventbus.Bus
	concurrency int
}

// WithGateway selects the gateway view of the schema.
func WithGateway(gateway bool) Option { return func(c *config) { c.gateway = gateway } }

// WithResolvers sets the resolvers to compose with. The map is not modified.
func WithResolvers(r Resolvers) Option { return func(c *config) { c.resolvers = r } }

func WithLogger(l *zap.Logger) Option { return func(c *config) { c.logger = l } }

func WithEventBus(b *EventBus) Option { return func(c *config) { c.bus = b } }

// WithConcurrency bounds the resolver goroutines run per execution depth.
func WithConcurrency(n int) Option { return func(c *config) { c.concurrency = n } }

// NewEventBus returns an empty event bus.
func NewEventBus() *EventBus { return eventbus.New() }
