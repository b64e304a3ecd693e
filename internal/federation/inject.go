package federation

import (
	language "github.com/hanpama/fedgraph/internal/language"
)

type InjectOptions struct {
	Gateway bool
}

// Inject returns doc with the federation declarations it needs. User
// declarations always win over the injected ones. In gateway mode the
// federation machinery is stripped instead, keeping @requires and _FieldSet.
//
// Type definitions carrying @extends or @requires are moved to the extension
// list so they reconcile like `extend type`. doc itself is not modified.
func Inject(doc *language.SchemaDocument, opts InjectOptions) (*language.SchemaDocument, error) {
	defs, exts := normalizeExtensions(doc.Definitions, doc.Extensions)
	out := &language.SchemaDocument{
		Schema:          doc.Schema,
		SchemaExtension: doc.SchemaExtension,
		Definitions:     defs,
		Extensions:      exts,
	}

	declared := doc.Directives
	if opts.Gateway {
		declared = filterDirectives(declared, func(d *language.DirectiveDefinition) bool {
			return !gatewayStripped[d.Name]
		})
	}
	directives, err := dedupeDirectives(declared, opts.Gateway)
	if err != nil {
		return nil, err
	}
	out.Directives = directives

	stubs := federationStubs()
	if opts.Gateway {
		out.Definitions = stripDefinitions(out.Definitions)
		out.Extensions = stripDefinitions(out.Extensions)
		for _, d := range stubs.Directives {
			if d.Name == DirectiveRequires && !hasDirectiveDefinition(out.Directives, d.Name) {
				out.Directives = append(out.Directives, d)
			}
		}
		for _, def := range stubs.Definitions {
			if def.Name == TypeFieldSet && !declaresType(out, def.Name) {
				out.Definitions = append(out.Definitions, def)
			}
		}
		return out, nil
	}

	for _, d := range stubs.Directives {
		if !hasDirectiveDefinition(out.Directives, d.Name) {
			out.Directives = append(out.Directives, d)
		}
	}
	for _, def := range stubs.Definitions {
		if !declaresType(out, def.Name) {
			out.Definitions = append(out.Definitions, def)
		}
	}
	return out, nil
}

// hasExtensionDirective reports whether a type definition marks itself as an
// extension.
func hasExtensionDirective(def *language.Definition) bool {
	for _, d := range def.Directives {
		if d.Name == DirectiveExtends || d.Name == DirectiveRequires {
			return true
		}
	}
	return false
}

func normalizeExtensions(defs, exts language.DefinitionList) (language.DefinitionList, language.DefinitionList) {
	var (
		outDefs = make(language.DefinitionList, 0, len(defs))
		moved   language.DefinitionList
	)
	for _, def := range defs {
		if hasExtensionDirective(def) {
			moved = append(moved, def)
			continue
		}
		outDefs = append(outDefs, def)
	}
	outExts := make(language.DefinitionList, 0, len(moved)+len(exts))
	outExts = append(outExts, moved...)
	outExts = append(outExts, exts...)
	return outDefs, outExts
}

// dedupeDirectives collapses identical declarations. Differing declarations
// of one name fail in gateway mode and are kept for the validator otherwise.
func dedupeDirectives(list language.DirectiveDefinitionList, gateway bool) (language.DirectiveDefinitionList, error) {
	var (
		out   = make(language.DirectiveDefinitionList, 0, len(list))
		first = make(map[string]*language.DirectiveDefinition, len(list))
	)
	for _, d := range list {
		prev, ok := first[d.Name]
		if !ok {
			first[d.Name] = d
			out = append(out, d)
			continue
		}
		if sameSignature(prev, d) {
			continue
		}
		if gateway {
			return nil, ErrDuplicateDirective(d.Name)
		}
		out = append(out, d)
	}
	return out, nil
}

func filterDirectives(list language.DirectiveDefinitionList, keep func(*language.DirectiveDefinition) bool) language.DirectiveDefinitionList {
	out := make(language.DirectiveDefinitionList, 0, len(list))
	for _, d := range list {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

func hasDirectiveDefinition(list language.DirectiveDefinitionList, name string) bool {
	for _, d := range list {
		if d.Name == name {
			return true
		}
	}
	return false
}

func declaresType(doc *language.SchemaDocument, name string) bool {
	for _, def := range doc.Definitions {
		if def.Name == name {
			return true
		}
	}
	for _, def := range doc.Extensions {
		if def.Name == name {
			return true
		}
	}
	return false
}

// stripDefinitions drops gateway-internal types and the applications of
// gateway-stripped directives. Changed definitions are copied.
func stripDefinitions(list language.DefinitionList) language.DefinitionList {
	out := make(language.DefinitionList, 0, len(list))
	for _, def := range list {
		if gatewayStrippedTypes[def.Name] {
			continue
		}
		out = append(out, stripDefinition(def))
	}
	return out
}

func stripDefinition(def *language.Definition) *language.Definition {
	dirs, changed := stripDirectives(def.Directives)
	fields := make(language.FieldList, len(def.Fields))
	for i, f := range def.Fields {
		fieldDirs, fieldChanged := stripDirectives(f.Directives)
		if !fieldChanged {
			fields[i] = f
			continue
		}
		cp := *f
		cp.Directives = fieldDirs
		fields[i] = &cp
		changed = true
	}
	if !changed {
		return def
	}
	cp := *def
	cp.Directives = dirs
	cp.Fields = fields
	return &cp
}

func stripDirectives(list language.DirectiveList) (language.DirectiveList, bool) {
	changed := false
	out := make(language.DirectiveList, 0, len(list))
	for _, d := range list {
		if gatewayStripped[d.Name] {
			changed = true
			continue
		}
		out = append(out, d)
	}
	return out, changed
}
