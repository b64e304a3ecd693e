package language

import (
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

type (
	QueryDocument           = ast.QueryDocument
	SchemaDocument          = ast.SchemaDocument
	SchemaDefinition        = ast.SchemaDefinition
	SchemaDefinitionList    = ast.SchemaDefinitionList
	OperationTypeDefinition = ast.OperationTypeDefinition
	OperationDefinition     = ast.OperationDefinition
	SelectionSet            = ast.SelectionSet
	Selection               = ast.Selection
	Field                   = ast.Field
	InlineFragment          = ast.InlineFragment
	FragmentDefinition      = ast.FragmentDefinition
	FragmentSpread          = ast.FragmentSpread
	Directive               = ast.Directive
	DirectiveList           = ast.DirectiveList
	DirectiveDefinition     = ast.DirectiveDefinition
	DirectiveDefinitionList = ast.DirectiveDefinitionList
	DirectiveLocation       = ast.DirectiveLocation
	ArgumentList            = ast.ArgumentList
	Argument                = ast.Argument
	Value                   = ast.Value
	ChildValue              = ast.ChildValue
	FieldDefinition         = ast.FieldDefinition
	FieldList               = ast.FieldList
	ArgumentDefinition      = ast.ArgumentDefinition
	ArgumentDefinitionList  = ast.ArgumentDefinitionList
	EnumValueDefinition     = ast.EnumValueDefinition
	EnumValueList           = ast.EnumValueList
	Type                    = ast.Type
	Definition              = ast.Definition
	DefinitionList          = ast.DefinitionList
	Position                = ast.Position
	Source                  = ast.Source
	Error                   = gqlerror.Error
)

type DefinitionKind = ast.DefinitionKind

type Operation = ast.Operation

type ValueKind = ast.ValueKind

const (
	Query        Operation = ast.Query
	Mutation     Operation = ast.Mutation
	Subscription Operation = ast.Subscription

	Object      DefinitionKind = ast.Object
	Interface   DefinitionKind = ast.Interface
	Union       DefinitionKind = ast.Union
	Scalar      DefinitionKind = ast.Scalar
	Enum        DefinitionKind = ast.Enum
	InputObject DefinitionKind = ast.InputObject

	Variable     ValueKind = ast.Variable
	IntValue     ValueKind = ast.IntValue
	FloatValue   ValueKind = ast.FloatValue
	StringValue  ValueKind = ast.StringValue
	BlockValue   ValueKind = ast.BlockValue
	BooleanValue ValueKind = ast.BooleanValue
	NullValue    ValueKind = ast.NullValue
	EnumValue    ValueKind = ast.EnumValue
	ListValue    ValueKind = ast.ListValue
	ObjectValue  ValueKind = ast.ObjectValue
)

// Directive locations used by schema definitions.
const (
	LocationSchema               DirectiveLocation = ast.LocationSchema
	LocationScalar               DirectiveLocation = ast.LocationScalar
	LocationObject               DirectiveLocation = ast.LocationObject
	LocationFieldDefinition      DirectiveLocation = ast.LocationFieldDefinition
	LocationArgumentDefinition   DirectiveLocation = ast.LocationArgumentDefinition
	LocationInterface            DirectiveLocation = ast.LocationInterface
	LocationUnion                DirectiveLocation = ast.LocationUnion
	LocationEnum                 DirectiveLocation = ast.LocationEnum
	LocationEnumValue            DirectiveLocation = ast.LocationEnumValue
	LocationInputObject          DirectiveLocation = ast.LocationInputObject
	LocationInputFieldDefinition DirectiveLocation = ast.LocationInputFieldDefinition
)
