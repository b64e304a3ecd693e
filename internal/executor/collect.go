package executor

import (
	language "github.com/hanpama/fedgraph/internal/language"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// fieldGroup is one response key with every field node merged into it, in
// document order.
type fieldGroup struct {
	name   string
	fields []*language.Field
}

type collection struct {
	groups  []fieldGroup
	index   map[string]int
	visited map[string]bool
}

func (c *collection) add(f *language.Field) {
	name := f.Alias
	if name == "" {
		name = f.Name
	}
	if i, ok := c.index[name]; ok {
		c.groups[i].fields = append(c.groups[i].fields, f)
		return
	}
	c.index[name] = len(c.groups)
	c.groups = append(c.groups, fieldGroup{name: name, fields: []*language.Field{f}})
}

// collectFields groups the selections applying to objectType by response key.
func (ex *execution) collectFields(objectType *schema.Type, set language.SelectionSet) []fieldGroup {
	c := &collection{index: make(map[string]int), visited: make(map[string]bool)}
	ex.collect(objectType, set, c)
	return c.groups
}

func (ex *execution) collect(objectType *schema.Type, set language.SelectionSet, c *collection) {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *language.Field:
			if ex.included(sel.Directives) {
				c.add(sel)
			}
		case *language.InlineFragment:
			if ex.included(sel.Directives) && ex.applies(objectType, sel.TypeCondition) {
				ex.collect(objectType, sel.SelectionSet, c)
			}
		case *language.FragmentSpread:
			if !ex.included(sel.Directives) || c.visited[sel.Name] {
				continue
			}
			c.visited[sel.Name] = true
			frag := ex.document.Fragments.ForName(sel.Name)
			if frag == nil || !ex.applies(objectType, frag.TypeCondition) {
				continue
			}
			ex.collect(objectType, frag.SelectionSet, c)
		}
	}
}

// applies reports whether a fragment with the given type condition selects
// fields of objectType.
func (ex *execution) applies(objectType *schema.Type, condition string) bool {
	if condition == "" || condition == objectType.Name {
		return true
	}
	t := ex.schema.Types[condition]
	if t == nil {
		return false
	}
	switch t.Kind {
	case schema.TypeKindInterface:
		return objectType.Implements(condition) || t.IsPossibleType(objectType.Name)
	case schema.TypeKindUnion:
		return t.IsPossibleType(objectType.Name)
	}
	return false
}

// included evaluates @skip and @include.
func (ex *execution) included(directives language.DirectiveList) bool {
	if d := directives.ForName("skip"); d != nil && ex.directiveFlag(d) {
		return false
	}
	if d := directives.ForName("include"); d != nil && !ex.directiveFlag(d) {
		return false
	}
	return true
}

func (ex *execution) directiveFlag(d *language.Directive) bool {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false
	}
	b, _ := valueOf(arg.Value, ex.variables).(bool)
	return b
}

// mergeSelectionSets concatenates the sub-selections of merged field nodes.
func mergeSelectionSets(fields []*language.Field) language.SelectionSet {
	var merged language.SelectionSet
	for _, f := range fields {
		merged = append(merged, f.SelectionSet...)
	}
	return merged
}
