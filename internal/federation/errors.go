package federation

import "fmt"

// Error codes.
const (
	CodeInvalidSchema      = "FEDERATION_INVALID_SCHEMA"
	CodeDuplicateDirective = "FEDERATION_DUPLICATE_DIRECTIVE"
)

// Error is a coded federation failure. Its code is exposed to GraphQL
// responses through Extensions.
type Error struct {
	code    string
	message string
	// Name is the type or directive the error is about.
	Name string
}

func (e *Error) Error() string { return e.message }

func (e *Error) Code() string { return e.code }

func (e *Error) Extensions() map[string]any { return map[string]any{"code": e.code} }

// ErrUnknownEntityType reports a representation whose __typename names no
// object type in the schema.
func ErrUnknownEntityType(typename string) *Error {
	return &Error{
		code:    CodeInvalidSchema,
		message: fmt.Sprintf("The _entities resolver tried to load an entity for type %q, but no object type of that name was found in the schema", typename),
		Name:    typename,
	}
}

// ErrDuplicateDirective reports two gateway directive declarations sharing a
// name but not a signature.
func ErrDuplicateDirective(name string) *Error {
	return &Error{
		code:    CodeDuplicateDirective,
		message: fmt.Sprintf("Directive with a different definition but the same name %q already exists in the gateway schema", name),
		Name:    name,
	}
}
