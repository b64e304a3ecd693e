package validation

import (
	"fmt"
	"strings"

	language "github.com/hanpama/fedgraph/internal/language"
)

// CodeInvalidSchema identifies schema validation failures.
const CodeInvalidSchema = "INVALID_SCHEMA"

type Violation struct {
	Rule    string `json:"rule,omitempty"`
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

func (v *Violation) String() string {
	if v.File == "" && v.Line == 0 {
		return v.Message
	}
	return fmt.Sprintf("%s %s:%d:%d", v.Message, v.File, v.Line, v.Column)
}

// Error aggregates every violation found in one validation pass.
type Error struct {
	Violations []*Violation
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("Invalid schema:\n")
	for _, v := range e.Violations {
		b.WriteString("- ")
		b.WriteString(v.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *Error) Code() string { return CodeInvalidSchema }

// Messages returns the violation messages in report order.
func (e *Error) Messages() []string {
	out := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		out[i] = v.Message
	}
	return out
}

func newViolation(rule, message string, pos *language.Position) *Violation {
	v := &Violation{Rule: rule, Message: message}
	if pos != nil {
		v.Line = pos.Line
		v.Column = pos.Column
		if pos.Src != nil {
			v.File = pos.Src.Name
		}
	}
	return v
}
