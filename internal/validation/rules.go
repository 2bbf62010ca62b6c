package validation

import (
	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

const (
	ruleOperations = "OperationDefinitions"
	ruleFragments  = "Fragments"
	ruleFields     = "FieldsOnCorrectType"
	ruleArguments  = "Arguments"
	ruleDirectives = "KnownDirectives"
	ruleVariables  = "Variables"
)

// checkOperations enforces unique operation names and the lone-anonymous
// rule.
func checkOperations(c *ruleContext) {
	seen := map[string]bool{}
	for _, op := range c.doc.Operations {
		if op.Name != "" {
			if seen[op.Name] {
				c.report(ruleOperations, op.Position, "there can be only one operation named %q", op.Name)
			}
			seen[op.Name] = true
		} else if len(c.doc.Operations) > 1 {
			c.report(ruleOperations, op.Position, "anonymous operation must be the only operation in the document")
		}
		if c.rootType(op) == nil {
			c.report(ruleOperations, op.Position, "schema does not support %s operations", op.Operation)
		}
	}
}

// checkFragments verifies that every spread resolves to a defined fragment,
// that fragment type conditions name composite types, and that the fragment
// reference graph is acyclic.
func checkFragments(c *ruleContext) {
	declared := map[string]*language.FragmentDefinition{}
	for _, frag := range c.doc.Fragments {
		if declared[frag.Name] != nil {
			c.report(ruleFragments, frag.Position, "there can be only one fragment named %q", frag.Name)
		}
		declared[frag.Name] = frag

		cond := c.schema.Types[frag.TypeCondition]
		if cond == nil {
			c.report(ruleFragments, frag.Position, "fragment %q is conditioned on unknown type %q", frag.Name, frag.TypeCondition)
		} else if !cond.IsComposite() {
			c.report(ruleFragments, frag.Position, "fragment %q cannot be conditioned on non-composite type %q", frag.Name, frag.TypeCondition)
		}
	}

	// Spread existence, across operations and fragment bodies.
	var checkSpreads func(set language.SelectionSet)
	checkSpreads = func(set language.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *language.Field:
				checkSpreads(s.SelectionSet)
			case *language.InlineFragment:
				checkSpreads(s.SelectionSet)
			case *language.FragmentSpread:
				if declared[s.Name] == nil {
					c.report(ruleFragments, s.Position, "unknown fragment %q", s.Name)
				}
			}
		}
	}
	for _, op := range c.doc.Operations {
		checkSpreads(op.SelectionSet)
	}
	for _, frag := range c.doc.Fragments {
		checkSpreads(frag.SelectionSet)
	}

	// Cycle detection: depth-first over the fragment reference graph; an
	// edge back to a fragment on the current stack is a cycle.
	const (
		white = 0
		gray  = 1
		black = 2
	)
	state := map[string]int{}
	var visit func(frag *language.FragmentDefinition)
	var visitSet func(origin *language.FragmentDefinition, set language.SelectionSet)
	visitSet = func(origin *language.FragmentDefinition, set language.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *language.Field:
				visitSet(origin, s.SelectionSet)
			case *language.InlineFragment:
				visitSet(origin, s.SelectionSet)
			case *language.FragmentSpread:
				target := declared[s.Name]
				if target == nil {
					continue
				}
				switch state[s.Name] {
				case gray:
					c.report(ruleFragments, s.Position, "fragment %q cannot be spread within itself", s.Name)
				case white:
					visit(target)
				}
			}
		}
	}
	visit = func(frag *language.FragmentDefinition) {
		state[frag.Name] = gray
		visitSet(frag, frag.SelectionSet)
		state[frag.Name] = black
	}
	for _, frag := range c.doc.Fragments {
		if state[frag.Name] == white {
			visit(frag)
		}
	}
}

// checkFields verifies every selected field exists on its enclosing type,
// that leaf fields carry no sub-selection, and that composite fields carry
// one. Fragment conditions must be able to apply to the enclosing type.
func checkFields(c *ruleContext) {
	var walk func(parent *schema.Type, set language.SelectionSet, visited map[string]bool)
	walk = func(parent *schema.Type, set language.SelectionSet, visited map[string]bool) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *language.Field:
				// __typename is implicit on every composite type.
				if s.Name == "__typename" {
					continue
				}
				if parent == nil {
					continue
				}
				if parent.Kind == schema.TypeKindUnion {
					c.report(ruleFields, s.Position, "cannot query field %q on union type %q; use an inline fragment on a member type", s.Name, parent.Name)
					continue
				}
				fd := parent.Field(s.Name)
				if fd == nil {
					if c.rootIntrospectionField(parent, s.Name) {
						continue
					}
					c.report(ruleFields, s.Position, "cannot query field %q on type %q", s.Name, parent.Name)
					continue
				}
				named := c.schema.Types[fd.Type.GetNamedType()]
				if named == nil {
					continue
				}
				if named.IsLeaf() && len(s.SelectionSet) > 0 {
					c.report(ruleFields, s.Position, "field %q of type %q must not have a selection set", s.Name, fd.Type)
				}
				if named.IsComposite() && len(s.SelectionSet) == 0 {
					c.report(ruleFields, s.Position, "field %q of type %q must have a selection set", s.Name, fd.Type)
				}
				walk(named, s.SelectionSet, visited)
			case *language.InlineFragment:
				next := parent
				if s.TypeCondition != "" {
					next = c.schema.Types[s.TypeCondition]
					if next == nil {
						c.report(ruleFields, s.Position, "inline fragment on unknown type %q", s.TypeCondition)
						continue
					}
					if parent != nil && !c.schema.Overlap(parent.Name, s.TypeCondition) {
						c.report(ruleFields, s.Position, "fragment on type %q can never apply to type %q", s.TypeCondition, parent.Name)
					}
				}
				walk(next, s.SelectionSet, visited)
			case *language.FragmentSpread:
				if visited[s.Name] {
					continue
				}
				visited[s.Name] = true
				frag := c.doc.Fragments.ForName(s.Name)
				if frag == nil {
					continue
				}
				cond := c.schema.Types[frag.TypeCondition]
				if cond != nil && parent != nil && !c.schema.Overlap(parent.Name, frag.TypeCondition) {
					c.report(ruleFields, s.Position, "fragment %q on type %q can never apply to type %q", s.Name, frag.TypeCondition, parent.Name)
				}
				walk(cond, frag.SelectionSet, visited)
			}
		}
	}
	for _, op := range c.doc.Operations {
		walk(c.rootType(op), op.SelectionSet, map[string]bool{})
	}
}

// checkArguments verifies supplied field arguments against their
// declarations: unknown arguments, missing required arguments, and literal
// values incompatible with the declared type.
func checkArguments(c *ruleContext) {
	for _, op := range c.doc.Operations {
		c.walkSelections(c.rootType(op), op.SelectionSet, map[string]bool{}, func(parent *schema.Type, field *language.Field) {
			fd := lookupField(parent, field.Name)
			if fd == nil {
				return
			}
			for _, arg := range field.Arguments {
				decl := fd.Argument(arg.Name)
				if decl == nil {
					c.report(ruleArguments, arg.Position, "unknown argument %q on field %q.%q", arg.Name, parent.Name, field.Name)
					continue
				}
				c.checkLiteral(arg.Value, decl.Type, arg.Position)
			}
			for _, decl := range fd.Arguments {
				if decl.Type.IsNonNull() && !decl.HasDefault && field.Arguments.ForName(decl.Name) == nil {
					c.report(ruleArguments, field.Position, "required argument %q of type %s on field %q.%q was not provided", decl.Name, decl.Type, parent.Name, field.Name)
				}
			}
		})
	}
}

// checkLiteral verifies that a literal value can be coerced to the declared
// type. Variable references are checked by the variable rule instead.
func (c *ruleContext) checkLiteral(value *language.Value, ref *schema.TypeRef, pos language.Position) {
	if value == nil || ref == nil {
		return
	}
	if value.Kind == language.Variable {
		return
	}
	if ref.IsNonNull() {
		if value.Kind == language.NullValue {
			c.report(ruleArguments, value.Position, "cannot provide null for non-null type %s", ref)
			return
		}
		c.checkLiteral(value, ref.Unwrap(), pos)
		return
	}
	if value.Kind == language.NullValue {
		return
	}
	if ref.Kind == schema.TypeRefKindList {
		if value.Kind == language.ListValue {
			for _, child := range value.Children {
				c.checkLiteral(child.Value, ref.Unwrap(), pos)
			}
		} else {
			// A single value coerces to a one-element list.
			c.checkLiteral(value, ref.Unwrap(), pos)
		}
		return
	}

	named := c.schema.Types[ref.GetNamedType()]
	if named == nil {
		return
	}
	switch named.Kind {
	case schema.TypeKindEnum:
		if value.Kind != language.EnumValue || !named.HasEnumValue(value.Raw) {
			c.report(ruleArguments, value.Position, "value %q is not a member of enum %q", value.Raw, named.Name)
		}
	case schema.TypeKindScalar:
		if named.ParseLiteral != nil {
			if _, err := named.ParseLiteral(value); err != nil {
				c.report(ruleArguments, value.Position, "invalid value for scalar %q: %v", named.Name, err)
			}
		}
	case schema.TypeKindInputObject:
		if value.Kind != language.ObjectValue {
			c.report(ruleArguments, value.Position, "expected an input object for type %q", named.Name)
			return
		}
		for _, child := range value.Children {
			decl := named.InputField(child.Name)
			if decl == nil {
				c.report(ruleArguments, child.Value.Position, "unknown field %q on input object %q", child.Name, named.Name)
				continue
			}
			c.checkLiteral(child.Value, decl.Type, child.Value.Position)
		}
		for _, decl := range named.InputFields {
			if decl.Type.IsNonNull() && !decl.HasDefault && value.Children.ForName(decl.Name) == nil {
				c.report(ruleArguments, value.Position, "required field %q of input object %q was not provided", decl.Name, named.Name)
			}
		}
	default:
		c.report(ruleArguments, value.Position, "type %q cannot be used as an input type", named.Name)
	}
}

// checkDirectives verifies that directives are defined, used in a permitted
// location, and given well-formed arguments.
func checkDirectives(c *ruleContext) {
	check := func(dirs language.DirectiveList, location string) {
		for _, d := range dirs {
			decl := c.schema.Directives[d.Name]
			if decl == nil {
				c.report(ruleDirectives, d.Position, "unknown directive @%s", d.Name)
				continue
			}
			if !contains(decl.Locations, location) {
				c.report(ruleDirectives, d.Position, "directive @%s is not allowed on %s", d.Name, location)
			}
			for _, arg := range d.Arguments {
				adecl := decl.Argument(arg.Name)
				if adecl == nil {
					c.report(ruleDirectives, arg.Position, "unknown argument %q on directive @%s", arg.Name, d.Name)
					continue
				}
				c.checkLiteral(arg.Value, adecl.Type, arg.Position)
			}
			for _, adecl := range decl.Arguments {
				if adecl.Type.IsNonNull() && !adecl.HasDefault && d.Arguments.ForName(adecl.Name) == nil {
					c.report(ruleDirectives, d.Position, "required argument %q on directive @%s was not provided", adecl.Name, d.Name)
				}
			}
		}
	}

	var walkSet func(set language.SelectionSet)
	walkSet = func(set language.SelectionSet) {
		for _, sel := range set {
			switch s := sel.(type) {
			case *language.Field:
				check(s.Directives, "FIELD")
				walkSet(s.SelectionSet)
			case *language.InlineFragment:
				check(s.Directives, "INLINE_FRAGMENT")
				walkSet(s.SelectionSet)
			case *language.FragmentSpread:
				check(s.Directives, "FRAGMENT_SPREAD")
			}
		}
	}
	locations := map[language.Operation]string{
		language.Query:        "QUERY",
		language.Mutation:     "MUTATION",
		language.Subscription: "SUBSCRIPTION",
	}
	for _, op := range c.doc.Operations {
		check(op.Directives, locations[op.Operation])
		walkSet(op.SelectionSet)
	}
	for _, frag := range c.doc.Fragments {
		check(frag.Directives, "FRAGMENT_DEFINITION")
		walkSet(frag.SelectionSet)
	}
}

// checkVariables verifies each operation's variable declarations: declared
// types are input types, every declaration is used, every use is declared,
// and the declared type is allowed at each usage site.
func checkVariables(c *ruleContext) {
	for _, op := range c.doc.Operations {
		declared := map[string]*language.VariableDefinition{}
		for _, def := range op.VariableDefinitions {
			if declared[def.Variable] != nil {
				c.report(ruleVariables, def.Position, "there can be only one variable named $%s", def.Variable)
			}
			declared[def.Variable] = def
			named := c.schema.Types[def.Type.Name()]
			if named == nil {
				c.report(ruleVariables, def.Position, "variable $%s has unknown type %s", def.Variable, def.Type)
			} else if !named.IsInput() {
				c.report(ruleVariables, def.Position, "variable $%s cannot have output type %s", def.Variable, def.Type)
			}
		}

		used := map[string]bool{}
		c.walkSelections(c.rootType(op), op.SelectionSet, map[string]bool{}, func(parent *schema.Type, field *language.Field) {
			fd := lookupField(parent, field.Name)
			for _, arg := range field.Arguments {
				var expected *schema.TypeRef
				if fd != nil {
					if decl := fd.Argument(arg.Name); decl != nil {
						expected = decl.Type
					}
				}
				c.checkVariableUsages(op, arg.Value, expected, declared, used)
			}
			for _, d := range field.Directives {
				for _, arg := range d.Arguments {
					var expected *schema.TypeRef
					if decl := c.schema.Directives[d.Name]; decl != nil {
						if adecl := decl.Argument(arg.Name); adecl != nil {
							expected = adecl.Type
						}
					}
					c.checkVariableUsages(op, arg.Value, expected, declared, used)
				}
			}
		})

		for _, def := range op.VariableDefinitions {
			if !used[def.Variable] {
				c.report(ruleVariables, def.Position, "variable $%s is declared but never used", def.Variable)
			}
		}
	}
}

// checkVariableUsages walks a value for variable references, marking each
// as used and checking it against the expected type at its position.
func (c *ruleContext) checkVariableUsages(op *language.OperationDefinition, value *language.Value, expected *schema.TypeRef, declared map[string]*language.VariableDefinition, used map[string]bool) {
	if value == nil {
		return
	}
	switch value.Kind {
	case language.Variable:
		used[value.Raw] = true
		def := declared[value.Raw]
		if def == nil {
			name := op.Name
			if name == "" {
				name = "anonymous operation"
			}
			c.report(ruleVariables, value.Position, "variable $%s is not declared by %s", value.Raw, name)
			return
		}
		if expected != nil && !c.variableUsageAllowed(def, expected) {
			c.report(ruleVariables, value.Position, "variable $%s of type %s cannot be used where %s is expected", value.Raw, def.Type, expected)
		}
	case language.ListValue:
		inner := expected
		if expected != nil && expected.IsList() {
			inner = unwrapListType(expected)
		}
		for _, child := range value.Children {
			c.checkVariableUsages(op, child.Value, inner, declared, used)
		}
	case language.ObjectValue:
		var named *schema.Type
		if expected != nil {
			named = c.schema.Types[expected.GetNamedType()]
		}
		for _, child := range value.Children {
			var fieldType *schema.TypeRef
			if named != nil && named.Kind == schema.TypeKindInputObject {
				if decl := named.InputField(child.Name); decl != nil {
					fieldType = decl.Type
				}
			}
			c.checkVariableUsages(op, child.Value, fieldType, declared, used)
		}
	}
}

func unwrapListType(ref *schema.TypeRef) *schema.TypeRef {
	if ref.Kind == schema.TypeRefKindNonNull {
		ref = ref.OfType
	}
	if ref != nil && ref.Kind == schema.TypeRefKindList {
		return ref.OfType
	}
	return nil
}

// variableUsageAllowed implements the variable usage compatibility rule: a
// nullable variable may feed a non-null site only when it carries a default,
// and list/named structure must match with nullability widening only.
func (c *ruleContext) variableUsageAllowed(def *language.VariableDefinition, site *schema.TypeRef) bool {
	varType := schema.TypeRefFromAST(def.Type)
	if site.IsNonNull() && !varType.IsNonNull() {
		if def.DefaultValue == nil {
			return false
		}
		site = site.Unwrap()
	}
	return typeSatisfies(varType, site)
}

// typeSatisfies reports whether a value of type a can be used where type b
// is expected; non-null may satisfy nullable but not the reverse.
func typeSatisfies(a, b *schema.TypeRef) bool {
	if a == nil || b == nil {
		return false
	}
	if b.Kind == schema.TypeRefKindNonNull {
		if a.Kind != schema.TypeRefKindNonNull {
			return false
		}
		return typeSatisfies(a.OfType, b.OfType)
	}
	if a.Kind == schema.TypeRefKindNonNull {
		return typeSatisfies(a.OfType, b)
	}
	if b.Kind == schema.TypeRefKindList {
		return a.Kind == schema.TypeRefKindList && typeSatisfies(a.OfType, b.OfType)
	}
	if a.Kind == schema.TypeRefKindList {
		return false
	}
	return a.Named == b.Named
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
