package schema

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Render prints s as SDL. Types and directives are sorted by name; built-in
// scalars and @include/@skip are left out.
func Render(s *Schema) string {
	if s == nil {
		return ""
	}
	var p printer
	p.schemaDefinition(s)
	for _, name := range sortedNames(s.Types, isBuiltinScalar) {
		p.typeDefinition(s.Types[name])
	}
	for _, name := range sortedNames(s.Directives, isBuiltinDirective) {
		p.directive(s.Directives[name])
	}
	return strings.TrimRight(p.String(), "\n") + "\n"
}

func sortedNames[V any](m map[string]V, skip func(string) bool) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		if !skip(name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

type printer struct {
	strings.Builder
}

// schemaDefinition prints a schema block unless every root type has its
// default name.
func (p *printer) schemaDefinition(s *Schema) {
	roots := []struct{ op, name, def string }{
		{"query", s.QueryType, "Query"},
		{"mutation", s.MutationType, "Mutation"},
		{"subscription", s.SubscriptionType, "Subscription"},
	}
	custom := false
	for _, r := range roots {
		if r.name != "" && r.name != r.def {
			custom = true
		}
	}
	if !custom {
		return
	}
	p.description(s.Description)
	p.WriteString("schema {\n")
	for _, r := range roots {
		if r.name != "" {
			p.WriteString("  " + r.op + ": " + r.name + "\n")
		}
	}
	p.WriteString("}\n\n")
}

func (p *printer) typeDefinition(t *Type) {
	p.description(t.Description)
	switch t.Kind {
	case TypeKindScalar:
		p.WriteString("scalar " + t.Name)
		if t.SpecifiedByURL != nil {
			p.WriteString(` @specifiedBy(url: "` + *t.SpecifiedByURL + `")`)
		}
		p.WriteString("\n\n")

	case TypeKindEnum:
		p.WriteString("enum " + t.Name)
		p.applied(t.Directives)
		p.WriteString(" {\n")
		for _, v := range t.EnumValues {
			p.description(v.Description)
			p.WriteString("  " + v.Name)
			p.deprecation(v.IsDeprecated, v.DeprecationReason)
			p.WriteString("\n")
		}
		p.WriteString("}\n\n")

	case TypeKindInputObject:
		p.WriteString("input " + t.Name)
		if t.OneOf {
			p.WriteString(" @oneOf")
		}
		p.WriteString(" {\n")
		for _, f := range t.InputFields {
			p.description(f.Description)
			p.WriteString("  ")
			p.inputValue(f)
			p.deprecation(f.IsDeprecated, f.DeprecationReason)
			p.WriteString("\n")
		}
		p.WriteString("}\n\n")

	case TypeKindObject, TypeKindInterface:
		keyword := "type "
		if t.Kind == TypeKindInterface {
			keyword = "interface "
		}
		p.WriteString(keyword + t.Name)
		if len(t.Interfaces) > 0 {
			p.WriteString(" implements " + strings.Join(t.Interfaces, " & "))
		}
		p.applied(t.Directives)
		p.WriteString(" {\n")
		for _, f := range t.Fields {
			p.field(f)
		}
		p.WriteString("}\n\n")

	case TypeKindUnion:
		p.WriteString("union " + t.Name)
		p.applied(t.Directives)
		p.WriteString(" = " + strings.Join(t.PossibleTypes, " | ") + "\n\n")
	}
}

func (p *printer) field(f *Field) {
	p.description(f.Description)
	p.WriteString("  " + f.Name)
	p.arguments(f.Arguments)
	p.WriteString(": " + renderTypeRef(f.Type))
	p.deprecation(f.IsDeprecated, f.DeprecationReason)
	p.applied(f.Directives)
	p.WriteString("\n")
}

func (p *printer) directive(d *Directive) {
	p.description(d.Description)
	p.WriteString("directive @" + d.Name)
	p.arguments(d.Arguments)
	if d.IsRepeatable {
		p.WriteString(" repeatable")
	}
	p.WriteString(" on " + strings.Join(d.Locations, " | ") + "\n\n")
}

func (p *printer) arguments(args []*InputValue) {
	if len(args) == 0 {
		return
	}
	p.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			p.WriteString(", ")
		}
		p.inputValue(arg)
	}
	p.WriteString(")")
}

// inputValue prints "name: Type = default".
func (p *printer) inputValue(v *InputValue) {
	p.WriteString(v.Name + ": " + renderTypeRef(v.Type))
	switch {
	case v.DefaultLiteral != "":
		p.WriteString(" = " + v.DefaultLiteral)
	case v.DefaultValue != nil:
		p.WriteString(" = " + renderValue(v.DefaultValue))
	}
}

func (p *printer) deprecation(deprecated bool, reason string) {
	if !deprecated {
		return
	}
	p.WriteString(" @deprecated")
	if reason != "" {
		p.WriteString(`(reason: "` + reason + `")`)
	}
}

func (p *printer) applied(list []*AppliedDirective) {
	for _, d := range list {
		p.WriteString(" @" + d.Name)
		if len(d.Arguments) == 0 {
			continue
		}
		p.WriteString("(")
		for i, arg := range d.Arguments {
			if i > 0 {
				p.WriteString(", ")
			}
			value := arg.Literal
			if value == "" {
				value = renderValue(arg.Value)
			}
			p.WriteString(arg.Name + ": " + value)
		}
		p.WriteString(")")
	}
}

func (p *printer) description(desc string) {
	if desc == "" {
		return
	}
	p.WriteString("\"\"\"\n" + strings.ReplaceAll(desc, `"`, `\"`) + "\n\"\"\"\n")
}

func renderTypeRef(t *TypeRef) string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case TypeRefKindNamed:
		return t.Named
	case TypeRefKindList:
		return "[" + renderTypeRef(t.OfType) + "]"
	case TypeRefKindNonNull:
		return renderTypeRef(t.OfType) + "!"
	}
	return ""
}

// renderValue prints a Go value as a GraphQL literal. Strings are quoted, so
// enum values must come as literals.
func renderValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(v)
	case int:
		return strconv.Itoa(v)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = renderValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		var parts []string
		for _, k := range slices.Sorted(maps.Keys(v)) {
			parts = append(parts, k+": "+renderValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return fmt.Sprint(value)
}
