package validation

import (
	"fmt"

	language "github.com/hanpama/fedgraph/internal/language"
)

// Message templates. Keep them stable; callers and tests match on them.

func msgLoneSchemaDefinition() string { return "Must provide only one schema definition." }

func msgDuplicateOperationType(op language.Operation) string {
	return fmt.Sprintf("There can be only one %s type in schema.", op)
}

func msgDuplicateType(name string) string {
	return fmt.Sprintf("There can be only one type named %q.", name)
}

func msgExtendKind(kind language.DefinitionKind, name string) string {
	return fmt.Sprintf("Cannot extend non-%s type %q.", kindName(kind), name)
}

func msgDuplicateDirective(name string) string {
	return fmt.Sprintf("There can be only one directive named \"@%s\".", name)
}

func msgDuplicateField(typeName, fieldName string) string {
	return fmt.Sprintf("Field \"%s.%s\" can only be defined once.", typeName, fieldName)
}

func msgDuplicateArgument(parent, argName string) string {
	return fmt.Sprintf("Argument \"%s(%s:)\" can only be defined once.", parent, argName)
}

func msgDuplicateEnumValue(enumName, valueName string) string {
	return fmt.Sprintf("Enum value \"%s.%s\" can only be defined once.", enumName, valueName)
}

func msgUnknownType(name string) string {
	return fmt.Sprintf("Unknown type %q.", name)
}

func msgUnknownDirective(name string) string {
	return fmt.Sprintf("Unknown directive \"@%s\".", name)
}

func msgMisplacedDirective(name string, loc language.DirectiveLocation) string {
	return fmt.Sprintf("Directive \"@%s\" may not be used on %s.", name, loc)
}

func msgRepeatedDirective(name string) string {
	return fmt.Sprintf("The directive \"@%s\" can only be used once at this location.", name)
}

func msgUnknownDirectiveArgument(directive, arg string) string {
	return fmt.Sprintf("Unknown argument %q on directive \"@%s\".", arg, directive)
}

func msgMissingDirectiveArgument(directive, arg, typ string) string {
	return fmt.Sprintf("Directive \"@%s\" argument %q of type %q is required, but it was not provided.", directive, arg, typ)
}

func msgRootNotObject(op language.Operation, typeName string) string {
	return fmt.Sprintf("%s root type must be Object type, it cannot be %s.", rootLabel(op), typeName)
}

func msgUnionMemberNotObject(union, member string) string {
	return fmt.Sprintf("Union type %s can only include Object types, it cannot include %s.", union, member)
}

func msgImplementsNonInterface(typeName, iface string) string {
	return fmt.Sprintf("Type %s must only implement Interface types, it cannot implement %s.", typeName, iface)
}

func msgMissingInterfaceField(iface, field, typeName string) string {
	return fmt.Sprintf("Interface field %s.%s expected but %s does not provide it.", iface, field, typeName)
}

func msgNotOutputType(typeName, field, got string) string {
	return fmt.Sprintf("The type of %s.%s must be Output Type but got: %s.", typeName, field, got)
}

func msgNotInputType(coordinate, got string) string {
	return fmt.Sprintf("The type of %s must be Input Type but got: %s.", coordinate, got)
}

func kindName(kind language.DefinitionKind) string {
	switch kind {
	case language.Object:
		return "object"
	case language.Interface:
		return "interface"
	case language.Union:
		return "union"
	case language.Scalar:
		return "scalar"
	case language.Enum:
		return "enum"
	case language.InputObject:
		return "input object"
	}
	return string(kind)
}

func rootLabel(op language.Operation) string {
	switch op {
	case language.Query:
		return "Query"
	case language.Mutation:
		return "Mutation"
	case language.Subscription:
		return "Subscription"
	}
	return string(op)
}
