package executor

import (
	"context"
	"errors"
	"fmt"

	language "github.com/hanpama/fedgraph/internal/language"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

type Executor struct {
	runtime Runtime
	schema  *schema.Schema
}

func NewExecutor(runtime Runtime, schema *schema.Schema) *Executor {
	return &Executor{runtime: runtime, schema: schema}
}

// execution is the state of one ExecuteRequest call.
type execution struct {
	ctx       context.Context
	runtime   Runtime
	schema    *schema.Schema
	document  *language.QueryDocument
	variables map[string]any

	data     map[string]any
	dataNull bool
	errors   []GraphQLError
	queue    []asyncTask
	dead     tombstones
}

// position is where a value lands in the response.
type position struct {
	path   Path
	fields []*language.Field
	parent string
	field  string
	// nullable is the nearest enclosing position that may hold null, this one
	// included. A null reaching a non-null position is written there. Empty
	// means the whole data entry.
	nullable Path
}

func (p position) item(i int, inner *schema.TypeRef) position {
	out := p
	out.path = p.path.with(i)
	if !inner.IsNonNull() {
		out.nullable = out.path
	}
	return out
}

// asyncTask is a field waiting for the next BatchResolveAsync call.
type asyncTask struct {
	task AsyncResolveTask
	pos  position
	typ  *schema.TypeRef
}

// ExecuteRequest runs one operation of document. Root fields of a mutation
// run one after another, each with its whole subtree; other operations batch
// async fields across the entire response, one depth at a time.
func (e *Executor) ExecuteRequest(
	ctx context.Context,
	document *language.QueryDocument,
	operationName string,
	variableValues map[string]any,
	initialValue any,
) *ExecutionResult {
	op, err := selectOperation(document, operationName)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}
	var rootType *schema.Type
	switch op.Operation {
	case language.Query:
		rootType = e.schema.GetQueryType()
	case language.Mutation:
		rootType = e.schema.GetMutationType()
	case language.Subscription:
		rootType = e.schema.GetSubscriptionType()
	}
	if rootType == nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: fmt.Sprintf("Schema is not configured to execute %s operation.", op.Operation)}}}
	}
	variables, err := coerceVariableValues(e.schema, op, variableValues)
	if err != nil {
		return &ExecutionResult{Errors: []GraphQLError{{Message: err.Error()}}}
	}

	ex := &execution{
		ctx:       ctx,
		runtime:   e.runtime,
		schema:    e.schema,
		document:  document,
		variables: variables,
		data:      make(map[string]any),
		errors:    []GraphQLError{},
		dead:      make(tombstones),
	}
	serial := op.Operation == language.Mutation
	for _, g := range ex.collectFields(rootType, op.SelectionSet) {
		pos := position{path: Path{g.name}, fields: g.fields}
		if !ex.executeField(ex.data, rootType, initialValue, pos) {
			ex.dataNull = true
			break
		}
		if serial {
			ex.drain()
		}
		if ex.dataNull {
			break
		}
	}
	ex.drain()

	if ex.dataNull {
		return &ExecutionResult{Errors: ex.errors}
	}
	return &ExecutionResult{Data: ex.data, Errors: ex.errors}
}

func selectOperation(document *language.QueryDocument, name string) (*language.OperationDefinition, error) {
	if name == "" {
		switch len(document.Operations) {
		case 0:
			return nil, errors.New("Must provide an operation.")
		case 1:
			return document.Operations[0], nil
		}
		return nil, errors.New("Must provide operation name if query contains multiple operations.")
	}
	if op := document.Operations.ForName(name); op != nil {
		return op, nil
	}
	return nil, fmt.Errorf("Unknown operation named \"%s\".", name)
}

// executeField resolves one response key of an object into out. It returns
// false when the value is null but the field is non-null, which nulls the
// enclosing object too.
func (ex *execution) executeField(out map[string]any, objectType *schema.Type, source any, pos position) bool {
	node := pos.fields[0]
	key := pos.path[len(pos.path)-1].(string)
	if node.Name == "__typename" {
		out[key] = objectType.Name
		return true
	}
	def := objectType.Field(node.Name)
	if def == nil {
		ex.fail(fmt.Errorf("Cannot query field \"%s\" on type \"%s\".", node.Name, objectType.Name), pos)
		return true
	}
	pos.parent, pos.field = objectType.Name, def.Name
	if !def.Type.IsNonNull() {
		pos.nullable = pos.path
	}

	var completed any
	args, err := coerceArguments(ex.schema, def, node, ex.variables)
	switch {
	case err != nil:
		ex.fail(err, pos)
	case def.Async:
		ex.queue = append(ex.queue, asyncTask{
			task: AsyncResolveTask{ObjectType: objectType.Name, Field: def.Name, Source: source, Args: args},
			pos:  pos,
			typ:  def.Type,
		})
		out[key] = pending{}
		return true
	default:
		v, err := ex.runtime.ResolveSync(ex.ctx, objectType.Name, def.Name, source, args)
		if err != nil {
			ex.fail(err, pos)
		} else {
			completed = ex.completeValue(def.Type, v, pos)
		}
	}
	if isNullish(completed) {
		out[key] = nil
		return !def.Type.IsNonNull()
	}
	out[key] = completed
	return true
}

// drain resolves queued fields one depth at a time until nothing is left.
func (ex *execution) drain() {
	for len(ex.queue) > 0 && !ex.dataNull {
		live := make([]asyncTask, 0, len(ex.queue))
		for _, at := range ex.queue {
			if !ex.dead.covers(at.pos.path) {
				live = append(live, at)
			}
		}
		ex.queue = nil
		if len(live) == 0 {
			return
		}
		tasks := make([]AsyncResolveTask, len(live))
		for i, at := range live {
			tasks[i] = at.task
		}
		results := ex.runtime.BatchResolveAsync(ex.ctx, tasks)
		for i, at := range live {
			var res AsyncResolveResult
			if i < len(results) {
				res = results[i]
			} else {
				res.Error = fmt.Errorf("no result for %s.%s", at.task.ObjectType, at.task.Field)
			}
			ex.completeAsync(at, res)
			if ex.dataNull {
				return
			}
		}
	}
}

func (ex *execution) completeAsync(at asyncTask, res AsyncResolveResult) {
	if ex.dead.covers(at.pos.path) {
		return
	}
	var completed any
	if res.Error != nil {
		ex.fail(res.Error, at.pos)
	} else {
		completed = ex.completeValue(at.typ, res.Value, at.pos)
	}
	if !isNullish(completed) {
		store(ex.data, at.pos.path, completed)
		return
	}
	ex.nullify(at.pos.nullable)
}

// nullify writes null at p and drops the work queued below it. An empty p
// nulls the whole data entry.
func (ex *execution) nullify(p Path) {
	if len(p) == 0 {
		ex.dataNull = true
		return
	}
	store(ex.data, p, nil)
	ex.dead.add(p)
}

// completeValue shapes a resolved value after t. It returns nil for null,
// having recorded an error if t did not allow it.
func (ex *execution) completeValue(t *schema.TypeRef, result any, pos position) any {
	if err, ok := result.(error); ok {
		ex.fail(err, pos)
		return nil
	}
	if t.IsNonNull() {
		if isNullish(result) {
			ex.fail(fmt.Errorf("Cannot return null for non-nullable field %s.%s.", pos.parent, pos.field), pos)
			return nil
		}
		return ex.completeValue(t.Unwrap(), result, pos)
	}
	if isNullish(result) {
		return nil
	}
	if t.IsList() {
		return ex.completeList(t, result, pos)
	}

	named := ex.schema.Types[t.GetNamedType()]
	if named == nil {
		ex.fail(fmt.Errorf("Unknown type \"%s\".", t.GetNamedType()), pos)
		return nil
	}
	switch named.Kind {
	case schema.TypeKindScalar, schema.TypeKindEnum:
		v, err := ex.runtime.SerializeLeafValue(ex.ctx, named.Name, result)
		if err != nil {
			ex.fail(err, pos)
			return nil
		}
		return v
	case schema.TypeKindObject:
		return ex.completeObject(named, result, pos)
	case schema.TypeKindInterface, schema.TypeKindUnion:
		return ex.completeAbstract(named, result, pos)
	}
	ex.fail(fmt.Errorf("Cannot complete value of type \"%s\".", named.Name), pos)
	return nil
}

func (ex *execution) completeList(t *schema.TypeRef, result any, pos position) any {
	items, ok := listItems(result)
	if !ok {
		ex.fail(fmt.Errorf("Expected Iterable, but did not find one for field \"%s.%s\".", pos.parent, pos.field), pos)
		return nil
	}
	inner := t.Unwrap()
	out := make([]any, len(items))
	for i, item := range items {
		v := ex.completeValue(inner, item, pos.item(i, inner))
		if isNullish(v) {
			if inner.IsNonNull() {
				ex.dead.add(pos.path)
				return nil
			}
			v = nil
		}
		out[i] = v
	}
	return out
}

func (ex *execution) completeObject(objectType *schema.Type, source any, pos position) any {
	out := make(map[string]any)
	for _, g := range ex.collectFields(objectType, mergeSelectionSets(pos.fields)) {
		child := position{path: pos.path.with(g.name), fields: g.fields, nullable: pos.nullable}
		if !ex.executeField(out, objectType, source, child) {
			ex.dead.add(pos.path)
			return nil
		}
	}
	return out
}

func (ex *execution) completeAbstract(abstractType *schema.Type, result any, pos position) any {
	typeName, err := ex.runtime.ResolveType(ex.ctx, abstractType.Name, result)
	if err != nil {
		ex.fail(err, pos)
		return nil
	}
	objectType := ex.schema.Types[typeName]
	if objectType == nil || objectType.Kind != schema.TypeKindObject {
		ex.fail(fmt.Errorf("Abstract type \"%s\" must resolve to an Object type at runtime for field \"%s.%s\". Got: \"%s\".", abstractType.Name, pos.parent, pos.field, typeName), pos)
		return nil
	}
	if !abstractType.IsPossibleType(typeName) {
		ex.fail(fmt.Errorf("Runtime Object type \"%s\" is not a possible type for \"%s\".", typeName, abstractType.Name), pos)
		return nil
	}
	var concrete any
	if abstractType.Kind == schema.TypeKindUnion {
		concrete, err = ex.runtime.ResolveUnionConcreteValue(ex.ctx, abstractType.Name, result)
	} else {
		concrete, err = ex.runtime.ResolveInterfaceConcreteValue(ex.ctx, abstractType.Name, result)
	}
	if err != nil {
		ex.fail(err, pos)
		return nil
	}
	return ex.completeObject(objectType, concrete, pos)
}

// fail records err at pos, keeping the extensions of errors that carry them.
func (ex *execution) fail(err error, pos position) {
	e := GraphQLError{Message: err.Error(), Locations: locationsOf(pos.fields), Path: pos.path}
	var ext interface{ Extensions() map[string]any }
	if errors.As(err, &ext) {
		e.Extensions = ext.Extensions()
	}
	ex.errors = append(ex.errors, e)
}
