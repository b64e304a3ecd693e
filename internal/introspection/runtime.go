// Package introspection serves __schema and __type on top of another
// executor runtime.
package introspection

import (
	"context"
	"fmt"
	"strings"

	executor "github.com/hanpama/fedgraph/internal/executor"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// Wrapper pairs the introspection-aware runtime with the schema it executes.
type Wrapper struct {
	Runtime executor.Runtime
	Schema  *schema.Schema
}

// Wrap extends sch with the introspection types and returns a runtime that
// resolves them, delegating every other field to base.
func Wrap(base executor.Runtime, sch *schema.Schema) *Wrapper {
	extended := extend(sch)
	return &Wrapper{
		Runtime: &runtime{Runtime: base, schema: extended},
		Schema:  extended,
	}
}

type runtime struct {
	executor.Runtime
	schema *schema.Schema
}

func (r *runtime) ResolveSync(ctx context.Context, objectType, field string, source any, args map[string]any) (any, error) {
	if resolve, ok := metaFields[objectType+"."+field]; ok {
		return resolve(r.schema, source, args), nil
	}
	if objectType == r.schema.QueryType {
		switch field {
		case "__schema":
			return r.schema, nil
		case "__type":
			name, _ := args["name"].(string)
			if t := r.schema.Types[name]; t != nil {
				return t, nil
			}
			return nil, nil
		}
	}
	return r.Runtime.ResolveSync(ctx, objectType, field, source, args)
}

// metaField resolves one field of an introspection type. Sources are the
// schema model values themselves.
type metaField func(sch *schema.Schema, source any, args map[string]any) any

var metaFields = map[string]metaField{
	"__Schema.description": func(_ *schema.Schema, src any, _ map[string]any) any {
		return optional(src.(*schema.Schema).Description)
	},
	"__Schema.types": func(_ *schema.Schema, src any, _ map[string]any) any {
		sch := src.(*schema.Schema)
		out := make([]*schema.Type, 0, len(sch.Types))
		for _, name := range sch.TypeNames() {
			out = append(out, sch.Types[name])
		}
		return out
	},
	"__Schema.queryType": func(_ *schema.Schema, src any, _ map[string]any) any {
		return src.(*schema.Schema).GetQueryType()
	},
	"__Schema.mutationType": func(_ *schema.Schema, src any, _ map[string]any) any {
		return src.(*schema.Schema).GetMutationType()
	},
	"__Schema.subscriptionType": func(_ *schema.Schema, src any, _ map[string]any) any {
		return src.(*schema.Schema).GetSubscriptionType()
	},
	"__Schema.directives": func(_ *schema.Schema, src any, _ map[string]any) any {
		return directives(src.(*schema.Schema))
	},

	// __Type sources are named types or type references; wrapper references
	// only answer kind and ofType.
	"__Type.kind": func(sch *schema.Schema, src any, _ map[string]any) any {
		if ref, ok := src.(*schema.TypeRef); ok && ref.Kind != schema.TypeRefKindNamed {
			return string(ref.Kind)
		}
		if t := namedType(sch, src); t != nil {
			return string(t.Kind)
		}
		return nil
	},
	"__Type.ofType": func(_ *schema.Schema, src any, _ map[string]any) any {
		if ref, ok := src.(*schema.TypeRef); ok && ref.Kind != schema.TypeRefKindNamed {
			return ref.OfType
		}
		return nil
	},
	"__Type.name": typeField(func(_ *schema.Schema, t *schema.Type, _ map[string]any) any {
		return t.Name
	}),
	"__Type.description": typeField(func(_ *schema.Schema, t *schema.Type, _ map[string]any) any {
		return optional(t.Description)
	}),
	"__Type.specifiedByURL": typeField(func(_ *schema.Schema, t *schema.Type, _ map[string]any) any {
		return t.SpecifiedByURL
	}),
	"__Type.fields": typeField(func(_ *schema.Schema, t *schema.Type, args map[string]any) any {
		if !hasFields(t) {
			return nil
		}
		out := []*schema.Field{}
		for _, f := range t.Fields {
			if !strings.HasPrefix(f.Name, "__") && visible(f.IsDeprecated, args) {
				out = append(out, f)
			}
		}
		return out
	}),
	"__Type.interfaces": typeField(func(sch *schema.Schema, t *schema.Type, _ map[string]any) any {
		if !hasFields(t) {
			return nil
		}
		return lookup(sch, t.Interfaces)
	}),
	"__Type.possibleTypes": typeField(func(sch *schema.Schema, t *schema.Type, _ map[string]any) any {
		if !t.Kind.IsAbstract() {
			return nil
		}
		return lookup(sch, t.PossibleTypes)
	}),
	"__Type.enumValues": typeField(func(_ *schema.Schema, t *schema.Type, args map[string]any) any {
		if t.Kind != schema.TypeKindEnum {
			return nil
		}
		out := []*schema.EnumValue{}
		for _, v := range t.EnumValues {
			if visible(v.IsDeprecated, args) {
				out = append(out, v)
			}
		}
		return out
	}),
	"__Type.inputFields": typeField(func(_ *schema.Schema, t *schema.Type, args map[string]any) any {
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return inputValues(t.InputFields, args)
	}),
	"__Type.isOneOf": typeField(func(_ *schema.Schema, t *schema.Type, _ map[string]any) any {
		if t.Kind != schema.TypeKindInputObject {
			return nil
		}
		return t.OneOf
	}),

	"__Field.name":        field(func(f *schema.Field, _ map[string]any) any { return f.Name }),
	"__Field.description": field(func(f *schema.Field, _ map[string]any) any { return optional(f.Description) }),
	"__Field.args":        field(func(f *schema.Field, args map[string]any) any { return inputValues(f.Arguments, args) }),
	"__Field.type":        field(func(f *schema.Field, _ map[string]any) any { return f.Type }),
	"__Field.isDeprecated": field(func(f *schema.Field, _ map[string]any) any {
		return f.IsDeprecated
	}),
	"__Field.deprecationReason": field(func(f *schema.Field, _ map[string]any) any {
		return reason(f.IsDeprecated, f.DeprecationReason)
	}),

	"__InputValue.name":        inputValue(func(v *schema.InputValue) any { return v.Name }),
	"__InputValue.description": inputValue(func(v *schema.InputValue) any { return optional(v.Description) }),
	"__InputValue.type":        inputValue(func(v *schema.InputValue) any { return v.Type }),
	"__InputValue.defaultValue": inputValue(func(v *schema.InputValue) any {
		switch {
		case v.DefaultLiteral != "":
			return &v.DefaultLiteral
		case v.DefaultValue != nil:
			s := fmt.Sprint(v.DefaultValue)
			return &s
		}
		return nil
	}),
	"__InputValue.isDeprecated": inputValue(func(v *schema.InputValue) any { return v.IsDeprecated }),
	"__InputValue.deprecationReason": inputValue(func(v *schema.InputValue) any {
		return reason(v.IsDeprecated, v.DeprecationReason)
	}),

	"__EnumValue.name":         enumValue(func(v *schema.EnumValue) any { return v.Name }),
	"__EnumValue.description":  enumValue(func(v *schema.EnumValue) any { return optional(v.Description) }),
	"__EnumValue.isDeprecated": enumValue(func(v *schema.EnumValue) any { return v.IsDeprecated }),
	"__EnumValue.deprecationReason": enumValue(func(v *schema.EnumValue) any {
		return reason(v.IsDeprecated, v.DeprecationReason)
	}),

	"__Directive.name":         directive(func(d *schema.Directive, _ map[string]any) any { return d.Name }),
	"__Directive.description":  directive(func(d *schema.Directive, _ map[string]any) any { return optional(d.Description) }),
	"__Directive.isRepeatable": directive(func(d *schema.Directive, _ map[string]any) any { return d.IsRepeatable }),
	"__Directive.locations":    directive(func(d *schema.Directive, _ map[string]any) any { return d.Locations }),
	"__Directive.args": directive(func(d *schema.Directive, args map[string]any) any {
		return inputValues(d.Arguments, args)
	}),
}

// namedType returns the type a __Type source stands for, or nil for
// wrappers.
func namedType(sch *schema.Schema, src any) *schema.Type {
	switch v := src.(type) {
	case *schema.Type:
		return v
	case *schema.TypeRef:
		if v.Kind == schema.TypeRefKindNamed {
			return sch.Types[v.Named]
		}
	}
	return nil
}

func typeField(get func(sch *schema.Schema, t *schema.Type, args map[string]any) any) metaField {
	return func(sch *schema.Schema, src any, args map[string]any) any {
		if t := namedType(sch, src); t != nil {
			return get(sch, t, args)
		}
		return nil
	}
}

func field(get func(f *schema.Field, args map[string]any) any) metaField {
	return func(_ *schema.Schema, src any, args map[string]any) any {
		return get(src.(*schema.Field), args)
	}
}

func inputValue(get func(v *schema.InputValue) any) metaField {
	return func(_ *schema.Schema, src any, _ map[string]any) any {
		return get(src.(*schema.InputValue))
	}
}

func enumValue(get func(v *schema.EnumValue) any) metaField {
	return func(_ *schema.Schema, src any, _ map[string]any) any {
		return get(src.(*schema.EnumValue))
	}
}

func directive(get func(d *schema.Directive, args map[string]any) any) metaField {
	return func(_ *schema.Schema, src any, args map[string]any) any {
		return get(src.(*schema.Directive), args)
	}
}

func hasFields(t *schema.Type) bool {
	return t.Kind == schema.TypeKindObject || t.Kind == schema.TypeKindInterface
}

// specifiedDirectives come first in __Schema.directives, the rest by name.
var specifiedDirectives = []string{"include", "skip", "deprecated", "specifiedBy", "oneOf"}

func directives(sch *schema.Schema) []*schema.Directive {
	out := make([]*schema.Directive, 0, len(sch.Directives))
	for _, name := range specifiedDirectives {
		if d := sch.Directives[name]; d != nil {
			out = append(out, d)
		}
	}
	for _, name := range sortedDirectiveNames(sch) {
		if !isSpecified(name) {
			out = append(out, sch.Directives[name])
		}
	}
	return out
}

func isSpecified(name string) bool {
	for _, s := range specifiedDirectives {
		if s == name {
			return true
		}
	}
	return false
}

func lookup(sch *schema.Schema, names []string) []*schema.Type {
	out := make([]*schema.Type, 0, len(names))
	for _, name := range names {
		if t := sch.Types[name]; t != nil {
			out = append(out, t)
		}
	}
	return out
}

func inputValues(list []*schema.InputValue, args map[string]any) []*schema.InputValue {
	out := []*schema.InputValue{}
	for _, v := range list {
		if visible(v.IsDeprecated, args) {
			out = append(out, v)
		}
	}
	return out
}

// visible applies the includeDeprecated argument.
func visible(deprecated bool, args map[string]any) bool {
	include, _ := args["includeDeprecated"].(bool)
	return include || !deprecated
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func reason(deprecated bool, r string) *string {
	if deprecated {
		return &r
	}
	return nil
}
