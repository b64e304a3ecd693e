package federation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	eventbus "github.com/hanpama/fedgraph/internal/eventbus"
	events "github.com/hanpama/fedgraph/internal/events"
	resolvers "github.com/hanpama/fedgraph/internal/resolvers"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// referenceKind selects how representations of a type become values. It is
// decided once per type when the resolver is built.
type referenceKind int

const (
	referencePassthrough referenceKind = iota
	referenceResolver
	referenceLoader
)

type candidate struct {
	name     string
	isTypeOf resolvers.IsTypeOfFunc
}

// entityPlan is the reference and type resolution of one named type.
type entityPlan struct {
	name     string
	abstract bool

	reference referenceKind
	resolve   resolvers.ReferenceFunc
	load      resolvers.LoaderFunc

	resolveType resolvers.ResolveTypeFunc
	candidates  []candidate
}

// concreteType names the object type of value, or returns "" when neither
// ResolveType nor any IsTypeOf decides it.
func (p *entityPlan) concreteType(ctx context.Context, value any) (name string, err error) {
	defer recoverInto(&err, p.name, "type resolution")
	if p.resolveType != nil {
		name, err := p.resolveType(ctx, value)
		if err != nil || name != "" {
			return name, err
		}
	}
	for _, c := range p.candidates {
		ok, err := c.isTypeOf(ctx, value)
		if err != nil {
			return "", err
		}
		if ok {
			return c.name, nil
		}
	}
	return "", nil
}

func buildPlans(sch *schema.Schema, m resolvers.Map) map[string]*entityPlan {
	plans := make(map[string]*entityPlan)
	for _, name := range sch.TypeNames() {
		t := sch.Types[name]
		switch t.Kind {
		case schema.TypeKindObject, schema.TypeKindInterface, schema.TypeKindUnion:
		default:
			continue
		}
		p := &entityPlan{name: name, abstract: t.Kind.IsAbstract()}
		if rt := m.Type(name); rt != nil {
			switch {
			case rt.LoadReferences != nil:
				p.reference, p.load = referenceLoader, rt.LoadReferences
			case rt.ResolveReference != nil:
				p.reference, p.resolve = referenceResolver, rt.ResolveReference
			}
			if p.abstract {
				p.resolveType = rt.ResolveType
			}
		}
		if p.abstract {
			for _, possible := range t.PossibleTypes {
				if pt := m.Type(possible); pt != nil && pt.IsTypeOf != nil {
					p.candidates = append(p.candidates, candidate{name: possible, isTypeOf: pt.IsTypeOf})
				}
			}
		}
		plans[name] = p
	}
	return plans
}

type entityResolver struct {
	plans  map[string]*entityPlan
	logger *zap.Logger
	bus    *eventbus.Bus
}

func newEntityResolver(sch *schema.Schema, m resolvers.Map, logger *zap.Logger, bus *eventbus.Bus) *entityResolver {
	return &entityResolver{plans: buildPlans(sch, m), logger: logger, bus: bus}
}

// entityJob tracks one representation through resolution.
type entityJob struct {
	rep map[string]any
	// plan belongs to the type the representation names; via resolves the
	// reference and may be a concrete implementation of an abstract plan.
	plan *entityPlan
	via  *entityPlan
	// typename is the concrete type once known.
	typename string

	value any
	err   error
}

func (j *entityJob) settle(value any, err error) {
	if err == nil {
		if e, ok := value.(error); ok {
			err = e
		}
	}
	if err != nil {
		j.value, j.err = nil, err
		return
	}
	j.value = value
}

// resolve is the Query._entities field resolver. Every position of the
// result holds either the resolved entity or the error that position failed
// with.
func (r *entityResolver) resolve(ctx context.Context, source any, args map[string]any) (any, error) {
	start := time.Now()
	reps, err := representations(args)
	if err != nil {
		return nil, err
	}
	eventbus.Publish(ctx, r.bus, events.EntitiesStart{Representations: len(reps)})

	jobs := make([]*entityJob, len(reps))
	for i, raw := range reps {
		jobs[i] = r.newJob(raw)
	}
	r.route(ctx, jobs)
	loads := r.fetch(ctx, jobs)
	r.typeResolved(ctx, jobs)

	results := make([]any, len(jobs))
	failed := 0
	for i, job := range jobs {
		switch {
		case job.err != nil:
			results[i] = job.err
			failed++
		case job.value == nil:
			results[i] = nil
		default:
			results[i] = tag(job.typename, job.value)
		}
	}

	r.logger.Debug("entities resolved",
		zap.Int("representations", len(jobs)),
		zap.Int("errors", failed),
		zap.Int("loads", loads),
		zap.Duration("duration", time.Since(start)),
	)
	eventbus.Publish(ctx, r.bus, events.EntitiesFinish{
		Representations: len(jobs),
		Errors:          failed,
		Loads:           loads,
		Duration:        time.Since(start),
	})
	return results, nil
}

func (r *entityResolver) newJob(raw any) *entityJob {
	rep, ok := raw.(map[string]any)
	if !ok {
		return &entityJob{err: fmt.Errorf("representation must be an object, got %T", raw)}
	}
	job := &entityJob{rep: rep}
	typename, _ := rep["__typename"].(string)
	if typename == "" {
		job.err = errors.New("representation is missing __typename")
		return job
	}
	plan := r.plans[typename]
	if plan == nil {
		job.err = ErrUnknownEntityType(typename)
		return job
	}
	job.plan, job.via = plan, plan
	if !plan.abstract {
		job.typename = typename
	}
	return job
}

// route decides the concrete type of representations naming an abstract
// type. A concrete type with its own reference resolution takes over from
// the abstract one.
func (r *entityResolver) route(ctx context.Context, jobs []*entityJob) {
	var g errgroup.Group
	for _, job := range jobs {
		if job.err != nil || !job.plan.abstract {
			continue
		}
		g.Go(func() error {
			name, err := job.plan.concreteType(ctx, job.rep)
			if err != nil {
				job.err = err
				return nil
			}
			if name == "" {
				return nil
			}
			job.typename = name
			if concrete := r.plans[name]; concrete != nil && concrete.reference != referencePassthrough {
				job.via = concrete
			}
			return nil
		})
	}
	_ = g.Wait()
}

// fetch resolves references. Loader jobs are grouped per type into one call
// each; it returns the number of loader calls made.
func (r *entityResolver) fetch(ctx context.Context, jobs []*entityJob) int {
	var (
		g       errgroup.Group
		order   []*entityPlan
		batches = make(map[*entityPlan][]*entityJob)
	)
	for _, job := range jobs {
		if job.err != nil {
			continue
		}
		switch job.via.reference {
		case referencePassthrough:
			job.value = job.rep
		case referenceResolver:
			g.Go(func() error {
				job.settle(callReference(ctx, job.via, job.rep))
				return nil
			})
		case referenceLoader:
			if _, seen := batches[job.via]; !seen {
				order = append(order, job.via)
			}
			batches[job.via] = append(batches[job.via], job)
		}
	}
	for _, plan := range order {
		batch := batches[plan]
		g.Go(func() error {
			loadBatch(ctx, plan, batch)
			return nil
		})
	}
	_ = g.Wait()
	return len(order)
}

// typeResolved types values whose representation named an abstract type the
// representation alone could not resolve.
func (r *entityResolver) typeResolved(ctx context.Context, jobs []*entityJob) {
	var g errgroup.Group
	for _, job := range jobs {
		if job.err != nil || job.value == nil || job.typename != "" {
			continue
		}
		if name, ok := typedName(job.value); ok {
			job.typename = name
			continue
		}
		g.Go(func() error {
			name, err := job.plan.concreteType(ctx, resolvers.Unwrap(job.value))
			if err != nil {
				job.value, job.err = nil, err
				return nil
			}
			if name == "" {
				name, _ = resolvers.Typename(job.value)
			}
			job.typename = name
			return nil
		})
	}
	_ = g.Wait()
}

func callReference(ctx context.Context, plan *entityPlan, rep map[string]any) (value any, err error) {
	defer recoverInto(&err, plan.name, "reference resolver")
	return plan.resolve(ctx, rep)
}

func loadBatch(ctx context.Context, plan *entityPlan, batch []*entityJob) {
	queries := make([]resolvers.LoaderQuery, len(batch))
	for i, job := range batch {
		queries[i] = resolvers.LoaderQuery{Obj: job.rep, Params: map[string]any{}}
	}
	values, err := callLoader(ctx, plan, queries)
	if err == nil && len(values) != len(batch) {
		err = fmt.Errorf("reference loader for %q returned %d values for %d representations", plan.name, len(values), len(batch))
	}
	for i, job := range batch {
		if err != nil {
			job.settle(nil, err)
			continue
		}
		job.settle(values[i], nil)
	}
}

func callLoader(ctx context.Context, plan *entityPlan, queries []resolvers.LoaderQuery) (values []any, err error) {
	defer recoverInto(&err, plan.name, "reference loader")
	return plan.load(ctx, queries)
}

func recoverInto(err *error, typeName, what string) {
	if p := recover(); p != nil {
		*err = fmt.Errorf("%s for %q panicked: %v", what, typeName, p)
	}
}

// tag wraps value with its concrete type name. Values that already carry one
// are kept as they are.
func tag(typename string, value any) any {
	if _, ok := typedName(value); ok || typename == "" {
		return value
	}
	return resolvers.Typed{Typename: typename, Value: value}
}

func typedName(v any) (string, bool) {
	switch tv := v.(type) {
	case resolvers.Typed, *resolvers.Typed:
		return resolvers.Typename(tv)
	}
	return "", false
}

func representations(args map[string]any) ([]any, error) {
	switch v := args["representations"].(type) {
	case []any:
		return v, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i, rep := range v {
			out[i] = rep
		}
		return out, nil
	case nil:
		return nil, errors.New("representations argument is required")
	default:
		return nil, fmt.Errorf("representations must be a list, got %T", v)
	}
}
