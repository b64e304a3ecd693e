package validation

import (
	"fmt"

	language "github.com/hanpama/fedgraph/internal/language"
)

// Rule names.
const (
	LoneSchemaDefinition                  = "LoneSchemaDefinition"
	UniqueOperationTypes                  = "UniqueOperationTypes"
	UniqueTypeNames                       = "UniqueTypeNames"
	PossibleTypeExtensions                = "PossibleTypeExtensions"
	UniqueDirectiveNames                  = "UniqueDirectiveNames"
	UniqueFieldDefinitionNames            = "UniqueFieldDefinitionNames"
	UniqueArgumentDefinitionNames         = "UniqueArgumentDefinitionNames"
	UniqueEnumValueNames                  = "UniqueEnumValueNames"
	KnownTypeNames                        = "KnownTypeNames"
	KnownDirectives                       = "KnownDirectives"
	KnownArgumentNamesOnDirectives        = "KnownArgumentNamesOnDirectives"
	ProvidedRequiredArgumentsOnDirectives = "ProvidedRequiredArgumentsOnDirectives"
	UniqueDirectivesPerLocation           = "UniqueDirectivesPerLocation"
	RootTypesAreObjects                   = "RootTypesAreObjects"
	UnionMembersAreObjects                = "UnionMembersAreObjects"
	ImplementsInterfaces                  = "ImplementsInterfaces"
	InputOutputTypes                      = "InputOutputTypes"
)

var builtinScalars = map[string]struct{}{
	"String":  {},
	"Int":     {},
	"Float":   {},
	"Boolean": {},
	"ID":      {},
}

// kindOf returns the kind of a named type, including built-in scalars.
func (c *Context) kindOf(name string) (language.DefinitionKind, bool) {
	if _, ok := builtinScalars[name]; ok {
		return language.Scalar, true
	}
	if def := c.Document.Definition(name); def != nil {
		return def.Kind, true
	}
	return "", false
}

func checkLoneSchemaDefinition(c *Context) {
	for i, sd := range c.Document.Schema.Schema {
		if i > 0 {
			c.Report(msgLoneSchemaDefinition(), sd.Position)
		}
	}
}

func checkUniqueOperationTypes(c *Context) {
	seen := map[language.Operation]bool{}
	check := func(list language.SchemaDefinitionList) {
		for _, sd := range list {
			for _, op := range sd.OperationTypes {
				if seen[op.Operation] {
					c.Report(msgDuplicateOperationType(op.Operation), op.Position)
					continue
				}
				seen[op.Operation] = true
			}
		}
	}
	check(c.Document.Schema.Schema)
	check(c.Document.Schema.SchemaExtension)
}

func checkUniqueTypeNames(c *Context) {
	for _, run := range c.Document.Runs {
		for i, def := range run.Bases {
			if i > 0 {
				c.Report(msgDuplicateType(run.Name), def.Position)
			}
		}
	}
}

func checkPossibleTypeExtensions(c *Context) {
	for _, run := range c.Document.Runs {
		for _, ext := range run.Extensions {
			if ext.Kind != run.Merged.Kind {
				c.Report(msgExtendKind(ext.Kind, run.Name), ext.Position)
			}
		}
	}
}

func checkUniqueDirectiveNames(c *Context) {
	seen := map[string]bool{}
	for _, d := range c.Document.Schema.Directives {
		if seen[d.Name] {
			c.Report(msgDuplicateDirective(d.Name), d.Position)
			continue
		}
		seen[d.Name] = true
	}
}

func checkUniqueFieldDefinitionNames(c *Context) {
	for _, def := range c.Document.Schema.Definitions {
		switch def.Kind {
		case language.Object, language.Interface, language.InputObject:
		default:
			continue
		}
		seen := map[string]bool{}
		for _, f := range def.Fields {
			if seen[f.Name] {
				c.Report(msgDuplicateField(def.Name, f.Name), f.Position)
				continue
			}
			seen[f.Name] = true
		}
	}
}

func checkUniqueArgumentDefinitionNames(c *Context) {
	check := func(parent string, args language.ArgumentDefinitionList) {
		seen := map[string]bool{}
		for _, a := range args {
			if seen[a.Name] {
				c.Report(msgDuplicateArgument(parent, a.Name), a.Position)
				continue
			}
			seen[a.Name] = true
		}
	}
	for _, def := range c.Document.Schema.Definitions {
		if def.Kind != language.Object && def.Kind != language.Interface {
			continue
		}
		for _, f := range def.Fields {
			check(def.Name+"."+f.Name, f.Arguments)
		}
	}
	for _, d := range c.Document.Schema.Directives {
		check("@"+d.Name, d.Arguments)
	}
}

func checkUniqueEnumValueNames(c *Context) {
	for _, def := range c.Document.Schema.Definitions {
		if def.Kind != language.Enum {
			continue
		}
		seen := map[string]bool{}
		for _, v := range def.EnumValues {
			if seen[v.Name] {
				c.Report(msgDuplicateEnumValue(def.Name, v.Name), v.Position)
				continue
			}
			seen[v.Name] = true
		}
	}
}

func checkKnownTypeNames(c *Context) {
	known := func(name string, pos *language.Position) {
		if name == "" {
			return
		}
		if _, ok := c.kindOf(name); !ok {
			c.Report(msgUnknownType(name), pos)
		}
	}
	typeRef := func(t *language.Type, fallback *language.Position) {
		if t == nil {
			return
		}
		pos := t.Position
		if pos == nil {
			pos = fallback
		}
		known(t.Name(), pos)
	}
	for _, sd := range append(append(language.SchemaDefinitionList{}, c.Document.Schema.Schema...), c.Document.Schema.SchemaExtension...) {
		for _, op := range sd.OperationTypes {
			known(op.Type, op.Position)
		}
	}
	for _, def := range c.Document.Schema.Definitions {
		for _, iface := range def.Interfaces {
			known(iface, def.Position)
		}
		for _, member := range def.Types {
			known(member, def.Position)
		}
		for _, f := range def.Fields {
			typeRef(f.Type, f.Position)
			for _, a := range f.Arguments {
				typeRef(a.Type, a.Position)
			}
		}
	}
	for _, d := range c.Document.Schema.Directives {
		for _, a := range d.Arguments {
			typeRef(a.Type, a.Position)
		}
	}
}

// directiveSite is one place directives can be applied.
type directiveSite struct {
	list     language.DirectiveList
	location language.DirectiveLocation
}

// directiveSites lists every directive application on type system members.
// Directives on schema definitions and extensions are not included: they carry
// linking metadata such as @link that this library does not interpret.
func (c *Context) directiveSites() []directiveSite {
	var out []directiveSite
	for _, def := range c.Document.Schema.Definitions {
		out = append(out, directiveSite{def.Directives, definitionLocation(def.Kind)})
		fieldLoc := language.LocationFieldDefinition
		if def.Kind == language.InputObject {
			fieldLoc = language.LocationInputFieldDefinition
		}
		for _, f := range def.Fields {
			out = append(out, directiveSite{f.Directives, fieldLoc})
			for _, a := range f.Arguments {
				out = append(out, directiveSite{a.Directives, language.LocationArgumentDefinition})
			}
		}
		for _, v := range def.EnumValues {
			out = append(out, directiveSite{v.Directives, language.LocationEnumValue})
		}
	}
	for _, d := range c.Document.Schema.Directives {
		for _, a := range d.Arguments {
			out = append(out, directiveSite{a.Directives, language.LocationArgumentDefinition})
		}
	}
	return out
}

func definitionLocation(kind language.DefinitionKind) language.DirectiveLocation {
	switch kind {
	case language.Object:
		return language.LocationObject
	case language.Interface:
		return language.LocationInterface
	case language.Union:
		return language.LocationUnion
	case language.Scalar:
		return language.LocationScalar
	case language.Enum:
		return language.LocationEnum
	case language.InputObject:
		return language.LocationInputObject
	}
	return ""
}

func checkKnownDirectives(c *Context) {
	for _, site := range c.directiveSites() {
		for _, use := range site.list {
			decl := c.Directive(use.Name)
			if decl == nil {
				c.Report(msgUnknownDirective(use.Name), use.Position)
				continue
			}
			allowed := false
			for _, loc := range decl.Locations {
				if loc == site.location {
					allowed = true
					break
				}
			}
			if !allowed {
				c.Report(msgMisplacedDirective(use.Name, site.location), use.Position)
			}
		}
	}
}

func checkKnownArgumentNamesOnDirectives(c *Context) {
	for _, site := range c.directiveSites() {
		for _, use := range site.list {
			decl := c.Directive(use.Name)
			if decl == nil {
				continue
			}
			for _, arg := range use.Arguments {
				if decl.Arguments.ForName(arg.Name) == nil {
					c.Report(msgUnknownDirectiveArgument(use.Name, arg.Name), arg.Position)
				}
			}
		}
	}
}

func checkProvidedRequiredArgumentsOnDirectives(c *Context) {
	for _, site := range c.directiveSites() {
		for _, use := range site.list {
			decl := c.Directive(use.Name)
			if decl == nil {
				continue
			}
			for _, argDef := range decl.Arguments {
				if argDef.Type == nil || !argDef.Type.NonNull || argDef.DefaultValue != nil {
					continue
				}
				if use.Arguments.ForName(argDef.Name) == nil {
					c.Report(msgMissingDirectiveArgument(use.Name, argDef.Name, argDef.Type.String()), use.Position)
				}
			}
		}
	}
}

func checkUniqueDirectivesPerLocation(c *Context) {
	for _, site := range c.directiveSites() {
		seen := map[string]bool{}
		for _, use := range site.list {
			decl := c.Directive(use.Name)
			if decl != nil && decl.IsRepeatable {
				continue
			}
			if seen[use.Name] {
				c.Report(msgRepeatedDirective(use.Name), use.Position)
				continue
			}
			seen[use.Name] = true
		}
	}
}

func checkRootTypesAreObjects(c *Context) {
	roots := []struct {
		op   language.Operation
		name string
	}{
		{language.Query, c.Document.RootTypes.Query},
		{language.Mutation, c.Document.RootTypes.Mutation},
		{language.Subscription, c.Document.RootTypes.Subscription},
	}
	for _, r := range roots {
		if r.name == "" {
			continue
		}
		kind, ok := c.kindOf(r.name)
		if !ok || kind == language.Object {
			continue
		}
		var pos *language.Position
		if def := c.Document.Definition(r.name); def != nil {
			pos = def.Position
		}
		c.Report(msgRootNotObject(r.op, r.name), pos)
	}
}

func checkUnionMembersAreObjects(c *Context) {
	for _, def := range c.Document.Schema.Definitions {
		if def.Kind != language.Union {
			continue
		}
		for _, member := range def.Types {
			if kind, ok := c.kindOf(member); ok && kind != language.Object {
				c.Report(msgUnionMemberNotObject(def.Name, member), def.Position)
			}
		}
	}
}

func checkImplementsInterfaces(c *Context) {
	for _, def := range c.Document.Schema.Definitions {
		if def.Kind != language.Object && def.Kind != language.Interface {
			continue
		}
		for _, name := range def.Interfaces {
			iface := c.Document.Definition(name)
			if iface == nil {
				continue
			}
			if iface.Kind != language.Interface {
				c.Report(msgImplementsNonInterface(def.Name, name), def.Position)
				continue
			}
			for _, f := range iface.Fields {
				if def.Fields.ForName(f.Name) == nil {
					c.Report(msgMissingInterfaceField(name, f.Name, def.Name), def.Position)
				}
			}
		}
	}
}

func checkInputOutputTypes(c *Context) {
	for _, def := range c.Document.Schema.Definitions {
		switch def.Kind {
		case language.Object, language.Interface:
			for _, f := range def.Fields {
				if kind, ok := c.kindOf(f.Type.Name()); ok && !isOutputKind(kind) {
					c.Report(msgNotOutputType(def.Name, f.Name, f.Type.String()), f.Position)
				}
				for _, a := range f.Arguments {
					if kind, ok := c.kindOf(a.Type.Name()); ok && !isInputKind(kind) {
						c.Report(msgNotInputType(fmt.Sprintf("%s.%s(%s:)", def.Name, f.Name, a.Name), a.Type.String()), a.Position)
					}
				}
			}
		case language.InputObject:
			for _, f := range def.Fields {
				if kind, ok := c.kindOf(f.Type.Name()); ok && !isInputKind(kind) {
					c.Report(msgNotInputType(def.Name+"."+f.Name, f.Type.String()), f.Position)
				}
			}
		}
	}
}

func isOutputKind(kind language.DefinitionKind) bool { return kind != language.InputObject }

func isInputKind(kind language.DefinitionKind) bool {
	return kind == language.Scalar || kind == language.Enum || kind == language.InputObject
}
