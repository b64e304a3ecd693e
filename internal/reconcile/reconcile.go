// Package reconcile folds base definitions and `extend` definitions sharing a
// type name into one canonical definition per name.
//
// Folding never drops information: duplicate fields, repeated base definitions
// and extensions of the wrong kind are kept (or remembered in the Run) so the
// validator can report them instead of a silent last-write-wins.
package reconcile

import (
	language "github.com/hanpama/fedgraph/internal/language"
)

// Document is a schema document with exactly one definition per type name.
type Document struct {
	// Schema holds the folded definitions. Extensions is always empty.
	Schema *language.SchemaDocument
	// Runs lists every definition run in order of first appearance.
	Runs      []*Run
	RootTypes RootTypes

	index map[string]*Run
}

// Run is the group of definitions sharing one type name.
type Run struct {
	Name string
	// Merged is the folded definition.
	Merged *language.Definition
	// Bases are the non-extension definitions, in encounter order.
	Bases []*language.Definition
	// Extensions are the `extend` definitions, in encounter order.
	Extensions []*language.Definition
}

// Stub reports whether the run has no base definition, so an extension
// stands in for it.
func (r *Run) Stub() bool { return len(r.Bases) == 0 }

// RootTypes names the operation root types.
type RootTypes struct {
	Query        string
	Mutation     string
	Subscription string
}

// Run returns the run for name, or nil.
func (d *Document) Run(name string) *Run { return d.index[name] }

// Definition returns the folded definition for name, or nil.
func (d *Document) Definition(name string) *language.Definition {
	if r := d.index[name]; r != nil {
		return r.Merged
	}
	return nil
}

// Reconcile folds doc. Base definitions come first in the output, followed by
// types that only appear as extensions.
func Reconcile(doc *language.SchemaDocument) *Document {
	out := &Document{index: make(map[string]*Run)}
	get := func(name string) *Run {
		r := out.index[name]
		if r == nil {
			r = &Run{Name: name}
			out.index[name] = r
			out.Runs = append(out.Runs, r)
		}
		return r
	}
	for _, def := range doc.Definitions {
		r := get(def.Name)
		r.Bases = append(r.Bases, def)
	}
	for _, ext := range doc.Extensions {
		r := get(ext.Name)
		r.Extensions = append(r.Extensions, ext)
	}

	merged := make(language.DefinitionList, 0, len(out.Runs))
	for _, r := range out.Runs {
		r.Merged = fold(r)
		merged = append(merged, r.Merged)
	}
	out.Schema = &language.SchemaDocument{
		Schema:          doc.Schema,
		SchemaExtension: doc.SchemaExtension,
		Directives:      doc.Directives,
		Definitions:     merged,
	}
	out.RootTypes = rootTypes(doc, out)
	return out
}

func fold(r *Run) *language.Definition {
	parts := make([]*language.Definition, 0, len(r.Bases)+len(r.Extensions))
	parts = append(parts, r.Bases...)
	parts = append(parts, r.Extensions...)

	first := parts[0]
	out := &language.Definition{
		Kind:     first.Kind,
		Name:     r.Name,
		Position: first.Position,
		BuiltIn:  first.BuiltIn,
	}
	for _, p := range parts {
		if p.Kind != out.Kind {
			continue
		}
		if out.Description == "" {
			out.Description = p.Description
		}
		out.Directives = append(out.Directives, p.Directives...)
		out.Interfaces = appendUnique(out.Interfaces, p.Interfaces...)
		out.Fields = append(out.Fields, p.Fields...)
		out.Types = appendUnique(out.Types, p.Types...)
		out.EnumValues = append(out.EnumValues, p.EnumValues...)
	}
	return out
}

func appendUnique(list []string, names ...string) []string {
outer:
	for _, n := range names {
		for _, existing := range list {
			if existing == n {
				continue outer
			}
		}
		list = append(list, n)
	}
	return list
}

func rootTypes(doc *language.SchemaDocument, d *Document) RootTypes {
	var rt RootTypes
	explicit := false
	apply := func(list language.SchemaDefinitionList) {
		for _, sd := range list {
			for _, op := range sd.OperationTypes {
				explicit = true
				switch op.Operation {
				case language.Query:
					rt.Query = op.Type
				case language.Mutation:
					rt.Mutation = op.Type
				case language.Subscription:
					rt.Subscription = op.Type
				}
			}
		}
	}
	apply(doc.Schema)
	apply(doc.SchemaExtension)
	if explicit {
		return rt
	}
	if d.Definition("Query") != nil {
		rt.Query = "Query"
	}
	if d.Definition("Mutation") != nil {
		rt.Mutation = "Mutation"
	}
	if d.Definition("Subscription") != nil {
		rt.Subscription = "Subscription"
	}
	return rt
}
