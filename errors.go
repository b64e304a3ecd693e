package fedgraph

import (
	"errors"

	federation "github.com/hanpama/fedgraph/internal/federation"
	validation "github.com/hanpama/fedgraph/internal/validation"
)

// Error codes reported by ErrorCode.
const (
	CodeInvalidSchema           = validation.CodeInvalidSchema
	CodeFederationInvalidSchema = federation.CodeInvalidSchema
	CodeDuplicateDirective      = federation.CodeDuplicateDirective
)

// ErrorCode returns the code of a build or resolution error, or "" for
// errors without one, such as syntax errors.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// Violations returns every validation message carried by err in report
// order, or nil.
func Violations(err error) []string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Messages()
	}
	return nil
}
