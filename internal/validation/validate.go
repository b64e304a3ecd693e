// Package validation checks a reconciled schema document against a rule set.
//
// Rules are plain values so callers can assemble the set they need. Relaxed
// is the standard set without UniqueDirectivesPerLocation: federated schemas
// legitimately repeat @key across extension fragments.
package validation

import (
	language "github.com/hanpama/fedgraph/internal/language"
	reconcile "github.com/hanpama/fedgraph/internal/reconcile"
)

// Rule is one named schema check.
type Rule struct {
	Name  string
	check func(c *Context)
}

// NewRule wraps a custom check.
func NewRule(name string, check func(c *Context)) Rule {
	return Rule{Name: name, check: check}
}

// Context is handed to each rule.
type Context struct {
	Document *reconcile.Document

	directives map[string]*language.DirectiveDefinition
	rule       string
	violations []*Violation
}

// Report records a violation for the running rule.
func (c *Context) Report(message string, pos *language.Position) {
	c.violations = append(c.violations, newViolation(c.rule, message, pos))
}

// Directive returns the declaration for name, including built-in directives.
func (c *Context) Directive(name string) *language.DirectiveDefinition {
	return c.directives[name]
}

// Validate runs rules against doc and returns an *Error listing every
// violation, or nil.
func Validate(doc *reconcile.Document, rules []Rule) error {
	c := &Context{
		Document:   doc,
		directives: make(map[string]*language.DirectiveDefinition),
	}
	for _, d := range doc.Schema.Directives {
		if _, exists := c.directives[d.Name]; !exists {
			c.directives[d.Name] = d
		}
	}
	for _, d := range builtinDirectives() {
		if _, exists := c.directives[d.Name]; !exists {
			c.directives[d.Name] = d
		}
	}
	for _, r := range rules {
		c.rule = r.Name
		r.check(c)
	}
	if len(c.violations) > 0 {
		return &Error{Violations: c.violations}
	}
	return nil
}

// Standard returns the full rule set.
func Standard() []Rule {
	return []Rule{
		{Name: LoneSchemaDefinition, check: checkLoneSchemaDefinition},
		{Name: UniqueOperationTypes, check: checkUniqueOperationTypes},
		{Name: UniqueTypeNames, check: checkUniqueTypeNames},
		{Name: PossibleTypeExtensions, check: checkPossibleTypeExtensions},
		{Name: UniqueDirectiveNames, check: checkUniqueDirectiveNames},
		{Name: UniqueFieldDefinitionNames, check: checkUniqueFieldDefinitionNames},
		{Name: UniqueArgumentDefinitionNames, check: checkUniqueArgumentDefinitionNames},
		{Name: UniqueEnumValueNames, check: checkUniqueEnumValueNames},
		{Name: KnownTypeNames, check: checkKnownTypeNames},
		{Name: KnownDirectives, check: checkKnownDirectives},
		{Name: KnownArgumentNamesOnDirectives, check: checkKnownArgumentNamesOnDirectives},
		{Name: ProvidedRequiredArgumentsOnDirectives, check: checkProvidedRequiredArgumentsOnDirectives},
		{Name: UniqueDirectivesPerLocation, check: checkUniqueDirectivesPerLocation},
		{Name: RootTypesAreObjects, check: checkRootTypesAreObjects},
		{Name: UnionMembersAreObjects, check: checkUnionMembersAreObjects},
		{Name: ImplementsInterfaces, check: checkImplementsInterfaces},
		{Name: InputOutputTypes, check: checkInputOutputTypes},
	}
}

// Relaxed returns the standard rule set minus UniqueDirectivesPerLocation.
func Relaxed() []Rule {
	return Without(Standard(), UniqueDirectivesPerLocation)
}

// Without returns rules minus the named ones.
func Without(rules []Rule, names ...string) []Rule {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	out := make([]Rule, 0, len(rules))
	for _, r := range rules {
		if _, ok := skip[r.Name]; ok {
			continue
		}
		out = append(out, r)
	}
	return out
}
