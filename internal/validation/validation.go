// Package validation runs a battery of static checks over a parsed document
// against a schema. Rules are independent: each collects its own findings
// and no rule short-circuits another, so a single pass reports everything
// that is wrong with the request.
package validation

import (
	"fmt"

	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

// Error is a single rule violation.
type Error struct {
	Rule      string
	Message   string
	Locations []language.Location
}

func (e *Error) Error() string { return e.Message }

type ruleFunc func(*ruleContext)

// rules is the fixed battery. Order affects only report order, never the
// set of findings.
var rules = []ruleFunc{
	checkOperations,
	checkFragments,
	checkFields,
	checkArguments,
	checkDirectives,
	checkVariables,
}

// Validate runs every rule and returns all violations. A nil return means
// the document is valid for the schema. The AST is never mutated.
func Validate(s *schema.Schema, doc *language.Document) []*Error {
	c := &ruleContext{schema: s, doc: doc}
	for _, rule := range rules {
		rule(c)
	}
	return c.errors
}

type ruleContext struct {
	schema *schema.Schema
	doc    *language.Document
	errors []*Error
}

func (c *ruleContext) report(rule string, pos language.Position, format string, args ...any) {
	c.errors = append(c.errors, &Error{
		Rule:      rule,
		Message:   fmt.Sprintf(format, args...),
		Locations: []language.Location{{Line: pos.Line, Column: pos.Column}},
	})
}

// rootType returns the schema type an operation executes against, or nil.
func (c *ruleContext) rootType(op *language.OperationDefinition) *schema.Type {
	switch op.Operation {
	case language.Query:
		return c.schema.GetQueryType()
	case language.Mutation:
		return c.schema.GetMutationType()
	case language.Subscription:
		return c.schema.GetSubscriptionType()
	}
	return nil
}

// rootIntrospectionField reports whether name is one of the introspection
// entry points that exist only on the query root. They are tolerated there
// even when the schema has not been extended with the introspection types;
// an extended schema defines them as ordinary fields and validates them
// fully.
func (c *ruleContext) rootIntrospectionField(parent *schema.Type, name string) bool {
	if name != "__schema" && name != "__type" {
		return false
	}
	return parent != nil && parent.Name == c.schema.QueryType
}

// walkSelections visits every field in the set with its enclosing type
// context, following fragment spreads at most once. fn returns the types to
// descend into for nested selections.
func (c *ruleContext) walkSelections(parent *schema.Type, set language.SelectionSet, visited map[string]bool, fn func(parent *schema.Type, field *language.Field)) {
	for _, sel := range set {
		switch s := sel.(type) {
		case *language.Field:
			fn(parent, s)
			var next *schema.Type
			if parent != nil {
				if fd := lookupField(parent, s.Name); fd != nil {
					next = c.schema.Types[fd.Type.GetNamedType()]
				}
			}
			if len(s.SelectionSet) > 0 {
				c.walkSelections(next, s.SelectionSet, visited, fn)
			}
		case *language.InlineFragment:
			next := parent
			if s.TypeCondition != "" {
				next = c.schema.Types[s.TypeCondition]
			}
			c.walkSelections(next, s.SelectionSet, visited, fn)
		case *language.FragmentSpread:
			if visited[s.Name] {
				continue
			}
			visited[s.Name] = true
			frag := c.doc.Fragments.ForName(s.Name)
			if frag == nil {
				continue
			}
			c.walkSelections(c.schema.Types[frag.TypeCondition], frag.SelectionSet, visited, fn)
		}
	}
}

// lookupField resolves a field definition on an object or interface type.
func lookupField(t *schema.Type, name string) *schema.Field {
	if t == nil {
		return nil
	}
	return t.Field(name)
}
