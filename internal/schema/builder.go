package schema

import (
	"fmt"

	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

// Build constructs the type system from a reconciled document. The document
// is expected to have passed validation; Build only fails on values it cannot
// convert.
func Build(doc *reconcile.Document) (*Schema, error) {
	s := NewSchema(schemaDescription(doc.Schema))
	s.SetQueryType(doc.RootTypes.Query).
		SetMutationType(doc.RootTypes.Mutation).
		SetSubscriptionType(doc.RootTypes.Subscription)
	addBuiltins(s)

	for _, def := range doc.Schema.Definitions {
		if isBuiltinScalar(def.Name) {
			continue
		}
		var (
			t   *Type
			err error
		)
		switch def.Kind {
		case language.Object:
			t, err = buildObject(def, TypeKindObject)
		case language.Interface:
			t, err = buildObject(def, TypeKindInterface)
		case language.Union:
			t, err = buildUnion(def)
		case language.Enum:
			t, err = buildEnum(def)
		case language.InputObject:
			t, err = buildInput(def)
		case language.Scalar:
			t, err = buildScalar(def)
		default:
			return nil, fmt.Errorf("type %s: unsupported kind %s", def.Name, def.Kind)
		}
		if err != nil {
			return nil, fmt.Errorf("type %s: %w", def.Name, err)
		}
		s.AddType(t)
	}
	linkPossibleTypes(s)

	for _, dir := range doc.Schema.Directives {
		if _, exists := s.Directives[dir.Name]; exists {
			continue
		}
		d, err := buildDirective(dir)
		if err != nil {
			return nil, fmt.Errorf("directive @%s: %w", dir.Name, err)
		}
		s.AddDirective(d)
	}
	return s, nil
}

// BuildFromSDL parses, reconciles and validates sdl with the standard rules,
// then builds the schema.
func BuildFromSDL(sdl string) (*Schema, error) {
	parsed, err := language.ParseSchema("schema.graphql", sdl)
	if err != nil {
		return nil, err
	}
	doc := reconcile.Reconcile(parsed)
	if err := validation.Validate(doc, validation.Standard()); err != nil {
		return nil, err
	}
	return Build(doc)
}

func schemaDescription(doc *language.SchemaDocument) string {
	for _, sd := range doc.Schema {
		if sd.Description != "" {
			return sd.Description
		}
	}
	return ""
}

// linkPossibleTypes fills interface possible types with their object
// implementations in declaration order.
func linkPossibleTypes(s *Schema) {
	for _, name := range s.TypeNames() {
		t := s.Types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, iface := range t.Interfaces {
			it := s.Types[iface]
			if it == nil || it.Kind != TypeKindInterface || it.IsPossibleType(t.Name) {
				continue
			}
			it.AddPossibleType(t.Name)
		}
	}
}

func buildObject(def *language.Definition, kind TypeKind) (*Type, error) {
	t := NewType(def.Name, kind, def.Description)
	for _, name := range def.Interfaces {
		t.AddInterface(name)
	}
	dirs, err := buildAppliedDirectives(def.Directives)
	if err != nil {
		return nil, err
	}
	t.Directives = dirs
	for _, fieldDef := range def.Fields {
		f, err := buildField(fieldDef)
		if err != nil {
			return nil, err
		}
		t.AddField(f)
	}
	return t, nil
}

func buildField(def *language.FieldDefinition) (*Field, error) {
	f := NewField(def.Name, def.Description, buildTypeRef(def.Type))
	if reason, ok := deprecation(def.Directives); ok {
		f.Deprecate(reason)
	}
	dirs, err := buildAppliedDirectives(def.Directives)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", def.Name, err)
	}
	f.Directives = dirs
	for _, arg := range def.Arguments {
		in, err := buildArgument(arg)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", def.Name, err)
		}
		f.AddArgument(in)
	}
	return f, nil
}

func buildEnum(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindEnum, def.Description)
	dirs, err := buildAppliedDirectives(def.Directives)
	if err != nil {
		return nil, err
	}
	t.Directives = dirs
	for _, v := range def.EnumValues {
		e := NewEnumValue(v.Name, v.Description)
		if reason, ok := deprecation(v.Directives); ok {
			e.Deprecate(reason)
		}
		t.AddEnumValue(e)
	}
	return t, nil
}

func buildTypeRef(t *language.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(buildTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func buildArgument(a *language.ArgumentDefinition) (*InputValue, error) {
	in := NewInputValue(a.Name, a.Description, buildTypeRef(a.Type))
	if a.DefaultValue != nil {
		v, err := a.DefaultValue.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default value of %s: %w", a.Name, err)
		}
		in.SetDefault(v)
		in.DefaultLiteral = a.DefaultValue.String()
	}
	if reason, ok := deprecation(a.Directives); ok {
		in.Deprecate(reason)
	}
	return in, nil
}

func buildInput(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindInputObject, def.Description).
		SetOneOf(def.Directives.ForName("oneOf") != nil)
	for _, f := range def.Fields {
		in := NewInputValue(f.Name, f.Description, buildTypeRef(f.Type))
		if f.DefaultValue != nil {
			v, err := f.DefaultValue.Value(nil)
			if err != nil {
				return nil, fmt.Errorf("default value of %s: %w", f.Name, err)
			}
			in.SetDefault(v)
			in.DefaultLiteral = f.DefaultValue.String()
		}
		if reason, ok := deprecation(f.Directives); ok {
			in.Deprecate(reason)
		}
		t.AddInputField(in)
	}
	return t, nil
}

func buildUnion(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindUnion, def.Description)
	for _, name := range def.Types {
		t.AddPossibleType(name)
	}
	dirs, err := buildAppliedDirectives(def.Directives)
	if err != nil {
		return nil, err
	}
	t.Directives = dirs
	return t, nil
}

func buildScalar(def *language.Definition) (*Type, error) {
	t := NewType(def.Name, TypeKindScalar, def.Description)
	if d := def.Directives.ForName("specifiedBy"); d != nil {
		if arg := d.Arguments.ForName("url"); arg != nil && arg.Value != nil {
			url := arg.Value.Raw
			t.SpecifiedByURL = &url
		}
	}
	return t, nil
}

func buildDirective(dir *language.DirectiveDefinition) (*Directive, error) {
	d := NewDirective(dir.Name, dir.Description).SetRepeatable(dir.IsRepeatable)
	for _, loc := range dir.Locations {
		d.Locations = append(d.Locations, string(loc))
	}
	for _, arg := range dir.Arguments {
		in, err := buildArgument(arg)
		if err != nil {
			return nil, err
		}
		d.AddArgument(in)
	}
	return d, nil
}

// buildAppliedDirectives records directive uses. @deprecated, @specifiedBy and
// @oneOf are carried by dedicated fields instead.
func buildAppliedDirectives(list language.DirectiveList) ([]*AppliedDirective, error) {
	var out []*AppliedDirective
	for _, d := range list {
		switch d.Name {
		case "deprecated", "specifiedBy", "oneOf":
			continue
		}
		applied := &AppliedDirective{Name: d.Name}
		for _, arg := range d.Arguments {
			v, err := arg.Value.Value(nil)
			if err != nil {
				return nil, fmt.Errorf("@%s(%s:): %w", d.Name, arg.Name, err)
			}
			applied.Arguments = append(applied.Arguments, &AppliedArgument{
				Name:    arg.Name,
				Value:   v,
				Literal: arg.Value.String(),
			})
		}
		out = append(out, applied)
	}
	return out, nil
}

func deprecation(list language.DirectiveList) (string, bool) {
	d := list.ForName("deprecated")
	if d == nil {
		return "", false
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return reason, true
}
