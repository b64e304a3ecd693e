package federation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

type SynthesizeOptions struct {
	Gateway bool
	// SDL is served by Query._service.
	SDL    string
	Logger *zap.Logger
	Bus    *eventbus.Bus
}

// Synthesis is the executable federation surface of a schema.
type Synthesis struct {
	Schema    *schema.Schema
	Resolvers resolvers.Map
	// Entities are the entity types in declaration order.
	Entities []string
	// Members are the object types of the _Entity union.
	Members []string
}

// Synthesize adds Query._service, the _Entity union and Query._entities to a
// copy of sch, and returns them together with a copy of m carrying their
// resolvers. Gateway schemas get neither. sch and m are not modified.
func Synthesize(sch *schema.Schema, m resolvers.Map, opts SynthesizeOptions) (*Synthesis, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &Synthesis{Schema: sch.Copy(), Resolvers: m.Clone()}
	out.Entities = EntityTypes(out.Schema)
	if opts.Gateway {
		logger.Debug("federation surface skipped", zap.Bool("gateway", true), zap.Strings("entities", out.Entities))
		return out, nil
	}

	query, err := ensureQuery(out.Schema)
	if err != nil {
		return nil, err
	}
	if query.Field(FieldService) != nil {
		return nil, fieldRedefined(query.Name, FieldService)
	}
	query.AddField(schema.NewField(FieldService, "", schema.NonNullType(schema.NamedType(TypeService))))
	sdl := opts.SDL
	out.Resolvers.Ensure(query.Name).SetField(FieldService, func(ctx context.Context, source any, args map[string]any) (any, error) {
		return map[string]any{"sdl": sdl}, nil
	})

	out.Members = EntityMembers(out.Schema, out.Entities)
	if len(out.Members) == 0 {
		logger.Debug("federation surface synthesized", zap.Strings("entities", out.Entities))
		return out, nil
	}
	if query.Field(FieldEntities) != nil {
		return nil, fieldRedefined(query.Name, FieldEntities)
	}
	if _, declared := out.Schema.Types[TypeEntity]; !declared {
		union := schema.NewType(TypeEntity, schema.TypeKindUnion, "")
		for _, name := range out.Members {
			union.AddPossibleType(name)
		}
		out.Schema.AddType(union)
	}
	query.AddField(schema.NewField(FieldEntities, "",
		schema.NonNullType(schema.ListType(schema.NamedType(TypeEntity)))).
		AddArgument(schema.NewInputValue("representations", "",
			schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType(TypeAny)))))))

	er := newEntityResolver(out.Schema, out.Resolvers, logger, opts.Bus)
	out.Resolvers.Ensure(query.Name).SetField(FieldEntities, er.resolve)

	logger.Debug("federation surface synthesized",
		zap.Strings("entities", out.Entities),
		zap.Strings("members", out.Members),
	)
	return out, nil
}

// ensureQuery returns a private copy of the query root of sch, creating an
// empty Query type when the schema has none.
func ensureQuery(sch *schema.Schema) (*schema.Type, error) {
	if sch.QueryType == "" {
		if t, exists := sch.Types["Query"]; exists && t.Kind != schema.TypeKindObject {
			return nil, fmt.Errorf("cannot use %s type %q as query root", t.Kind, t.Name)
		}
		sch.SetQueryType("Query")
	}
	current := sch.Types[sch.QueryType]
	var query *schema.Type
	if current == nil {
		query = schema.NewType(sch.QueryType, schema.TypeKindObject, "")
	} else {
		query = current.Copy()
	}
	sch.AddType(query)
	return query, nil
}

func fieldRedefined(typeName, field string) error {
	return &validation.Error{Violations: []*validation.Violation{{
		Rule:    validation.UniqueFieldDefinitionNames,
		Message: fmt.Sprintf("Field \"%s.%s\" can only be defined once.", typeName, field),
	}}}
}
