package executor

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"

	language "github.com/hanpama/fedgraph/internal/language"
	schema "github.com/hanpama/fedgraph/internal/schema"
)

// coerceVariableValues coerces request variables against the operation's
// variable definitions. Defaults fill in absent variables.
func coerceVariableValues(sch *schema.Schema, op *language.OperationDefinition, inputs map[string]any) (map[string]any, error) {
	c := coercer{schema: sch}
	out := make(map[string]any, len(op.VariableDefinitions))
	for _, def := range op.VariableDefinitions {
		t := typeRefFromAST(def.Type)
		v, ok := inputs[def.Variable]
		if !ok {
			switch {
			case def.DefaultValue != nil:
				dv, err := c.input(valueOf(def.DefaultValue, nil), t)
				if err != nil {
					return nil, fmt.Errorf("Variable \"$%s\" has invalid default value: %w", def.Variable, err)
				}
				out[def.Variable] = dv
			case t.IsNonNull():
				return nil, fmt.Errorf("Variable \"$%s\" of required type \"%s\" was not provided.", def.Variable, def.Type)
			}
			continue
		}
		if v == nil && t.IsNonNull() {
			return nil, fmt.Errorf("Variable \"$%s\" of non-null type \"%s\" must not be null.", def.Variable, def.Type)
		}
		cv, err := c.input(v, t)
		if err != nil {
			return nil, fmt.Errorf("Variable \"$%s\" got invalid value: %w", def.Variable, err)
		}
		out[def.Variable] = cv
	}
	return out, nil
}

// coerceArguments coerces the arguments of one field node. An argument bound
// to an absent variable counts as not provided.
func coerceArguments(sch *schema.Schema, def *schema.Field, field *language.Field, vars map[string]any) (map[string]any, error) {
	c := coercer{schema: sch}
	out := make(map[string]any, len(def.Arguments))
	for _, argDef := range def.Arguments {
		var (
			v       any
			present bool
		)
		if arg := field.Arguments.ForName(argDef.Name); arg != nil {
			if arg.Value.Kind == language.Variable {
				v, present = vars[arg.Value.Raw]
			} else {
				v, present = valueOf(arg.Value, vars), true
			}
		}
		if !present {
			switch {
			case argDef.DefaultValue != nil:
				dv, err := c.input(argDef.DefaultValue, argDef.Type)
				if err != nil {
					return nil, fmt.Errorf("Argument \"%s\" has invalid default value: %w", argDef.Name, err)
				}
				out[argDef.Name] = dv
			case argDef.Type.IsNonNull():
				return nil, fmt.Errorf("Argument \"%s\" of required type \"%s\" was not provided.", argDef.Name, argDef.Type)
			}
			continue
		}
		cv, err := c.input(v, argDef.Type)
		if err != nil {
			return nil, fmt.Errorf("Argument \"%s\" has invalid value: %w", argDef.Name, err)
		}
		out[argDef.Name] = cv
	}
	return out, nil
}

// valueOf converts a literal to a Go value, substituting variables at any
// depth. Object fields bound to absent variables are left out.
func valueOf(v *language.Value, vars map[string]any) any {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case language.Variable:
		return vars[v.Raw]
	case language.IntValue:
		if n, err := strconv.Atoi(v.Raw); err == nil {
			return n
		}
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.FloatValue:
		f, _ := strconv.ParseFloat(v.Raw, 64)
		return f
	case language.StringValue, language.BlockValue, language.EnumValue:
		return v.Raw
	case language.BooleanValue:
		return v.Raw == "true"
	case language.ListValue:
		out := make([]any, len(v.Children))
		for i, c := range v.Children {
			out[i] = valueOf(c.Value, vars)
		}
		return out
	case language.ObjectValue:
		out := make(map[string]any, len(v.Children))
		for _, c := range v.Children {
			if c.Value.Kind == language.Variable {
				if _, ok := vars[c.Value.Raw]; !ok {
					continue
				}
			}
			out[c.Name] = valueOf(c.Value, vars)
		}
		return out
	}
	return nil
}

type coercer struct {
	schema *schema.Schema
}

// input coerces an external value to t. Custom scalars pass through as they
// are.
func (c coercer) input(v any, t *schema.TypeRef) (any, error) {
	if t.IsNonNull() {
		if v == nil {
			return nil, fmt.Errorf("Expected non-nullable type \"%s\" not to be null.", t)
		}
		return c.input(v, t.Unwrap())
	}
	if v == nil {
		return nil, nil
	}
	if t.IsList() {
		inner := t.Unwrap()
		items, ok := listItems(v)
		if !ok {
			// a single value stands for a list of one
			item, err := c.input(v, inner)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := c.input(item, inner)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %w", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}

	name := t.GetNamedType()
	def := c.schema.Types[name]
	if def == nil || def.Kind == schema.TypeKindScalar {
		return coerceScalar(name, v)
	}
	switch def.Kind {
	case schema.TypeKindEnum:
		s, ok := v.(string)
		if !ok || !hasEnumValue(def, s) {
			return nil, fmt.Errorf("Value %v does not exist in \"%s\" enum.", v, name)
		}
		return s, nil
	case schema.TypeKindInputObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("Expected type \"%s\" to be an object.", name)
		}
		return c.inputObject(def, m)
	}
	return nil, fmt.Errorf("Type \"%s\" is not an input type.", name)
}

func (c coercer) inputObject(def *schema.Type, m map[string]any) (map[string]any, error) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if !hasInputField(def, k) {
			return nil, fmt.Errorf("Field \"%s\" is not defined by type \"%s\".", k, def.Name)
		}
	}
	out := make(map[string]any, len(def.InputFields))
	for _, f := range def.InputFields {
		v, ok := m[f.Name]
		if !ok {
			switch {
			case f.DefaultValue != nil:
				dv, err := c.input(f.DefaultValue, f.Type)
				if err != nil {
					return nil, fmt.Errorf("in field \"%s\": %w", f.Name, err)
				}
				out[f.Name] = dv
			case f.Type.IsNonNull():
				return nil, fmt.Errorf("Field \"%s.%s\" of required type \"%s\" was not provided.", def.Name, f.Name, f.Type)
			}
			continue
		}
		cv, err := c.input(v, f.Type)
		if err != nil {
			return nil, fmt.Errorf("in field \"%s\": %w", f.Name, err)
		}
		out[f.Name] = cv
	}
	if def.OneOf {
		set := 0
		for _, v := range out {
			if v != nil {
				set++
			}
		}
		if len(out) != 1 || set != 1 {
			return nil, fmt.Errorf("OneOf Input Object \"%s\" must specify exactly one non-null key.", def.Name)
		}
	}
	return out, nil
}

func hasEnumValue(def *schema.Type, name string) bool {
	for _, v := range def.EnumValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

func hasInputField(def *schema.Type, name string) bool {
	for _, f := range def.InputFields {
		if f.Name == name {
			return true
		}
	}
	return false
}

func coerceScalar(name string, v any) (any, error) {
	switch name {
	case "Int":
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", v)
		}
		return int(n), nil
	case "Float":
		if n, ok := toInt64(v); ok {
			return float64(n), nil
		}
		switch f := v.(type) {
		case float64:
			return f, nil
		case float32:
			return float64(f), nil
		}
		return nil, fmt.Errorf("Float cannot represent non numeric value: %v", v)
	case "String":
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("String cannot represent a non string value: %v", v)
		}
		return s, nil
	case "Boolean":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", v)
		}
		return b, nil
	case "ID":
		if s, ok := v.(string); ok {
			return s, nil
		}
		if n, ok := toInt64(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, fmt.Errorf("ID cannot represent value: %v", v)
	}
	return v, nil
}

// toInt64 accepts integer kinds and floats without a fractional part, which
// is how JSON decoding delivers integers.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) && n >= math.MinInt64 && n <= math.MaxInt64 {
			return int64(n), true
		}
	case float32:
		f := float64(n)
		if f == math.Trunc(f) {
			return int64(f), true
		}
	}
	return 0, false
}

func typeRefFromAST(t *language.Type) *schema.TypeRef {
	if t == nil {
		return nil
	}
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(typeRefFromAST(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = schema.NonNullType(ref)
	}
	return ref
}
