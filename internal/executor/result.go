package executor

import language "github.com/hanpama/fedgraph/internal/language"

// Location is a 1-based line and column in the operation document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError is one entry of the response errors list.
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// ExecutionResult is the outcome of one operation. Data is nil when the
// operation could not start or a null reached a non-null root field.
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

func locationsOf(fields []*language.Field) []Location {
	var out []Location
	for _, f := range fields {
		if f.Position != nil {
			out = append(out, Location{Line: f.Position.Line, Column: f.Position.Column})
		}
	}
	return out
}
