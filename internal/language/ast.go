package language

// Operation is the kind of an operation definition.
type Operation string

const (
	Query        Operation = "query"
	Mutation     Operation = "mutation"
	Subscription Operation = "subscription"
)

// Document is a parsed query document: operations plus fragments.
type Document struct {
	Operations OperationList
	Fragments  FragmentList
}

// OperationDefinition is a single query, mutation, or subscription.
type OperationDefinition struct {
	Operation           Operation
	Name                string
	VariableDefinitions VariableDefinitionList
	Directives          DirectiveList
	SelectionSet        SelectionSet
	Position            Position
}

type OperationList []*OperationDefinition

// ForName returns the operation with the given name, or nil. The empty name
// matches only an anonymous operation.
func (l OperationList) ForName(name string) *OperationDefinition {
	for _, op := range l {
		if op.Name == name {
			return op
		}
	}
	return nil
}

// VariableDefinition declares an operation variable with its type and an
// optional default.
type VariableDefinition struct {
	Variable     string
	Type         *Type
	DefaultValue *Value
	Directives   DirectiveList
	Position     Position
}

type VariableDefinitionList []*VariableDefinition

func (l VariableDefinitionList) ForName(name string) *VariableDefinition {
	for _, d := range l {
		if d.Variable == name {
			return d
		}
	}
	return nil
}

// FragmentDefinition is a named fragment with a type condition.
type FragmentDefinition struct {
	Name          string
	TypeCondition string
	Directives    DirectiveList
	SelectionSet  SelectionSet
	Position      Position
}

type FragmentList []*FragmentDefinition

func (l FragmentList) ForName(name string) *FragmentDefinition {
	for _, f := range l {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SelectionSet is an ordered list of selections at one response level.
type SelectionSet []Selection

// Selection is a Field, FragmentSpread, or InlineFragment.
type Selection interface {
	isSelection()
}

func (*Field) isSelection()          {}
func (*FragmentSpread) isSelection() {}
func (*InlineFragment) isSelection() {}

// Field is a single field selection, possibly aliased, with arguments,
// directives, and an optional nested selection set.
type Field struct {
	Alias        string
	Name         string
	Arguments    ArgumentList
	Directives   DirectiveList
	SelectionSet SelectionSet
	Position     Position
}

// ResponseKey is the key the field occupies in the response: the alias when
// present, the field name otherwise.
func (f *Field) ResponseKey() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// FragmentSpread references a named fragment.
type FragmentSpread struct {
	Name       string
	Directives DirectiveList
	Position   Position
}

// InlineFragment is an anonymous fragment, optionally conditioned on a type.
type InlineFragment struct {
	TypeCondition string
	Directives    DirectiveList
	SelectionSet  SelectionSet
	Position      Position
}

// Argument is a named value supplied to a field or directive.
type Argument struct {
	Name     string
	Value    *Value
	Position Position
}

type ArgumentList []*Argument

func (l ArgumentList) ForName(name string) *Argument {
	for _, a := range l {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// Directive is an @-annotation on a field, fragment, or operation.
type Directive struct {
	Name      string
	Arguments ArgumentList
	Position  Position
}

type DirectiveList []*Directive

func (l DirectiveList) ForName(name string) *Directive {
	for _, d := range l {
		if d.Name == name {
			return d
		}
	}
	return nil
}

// ValueKind discriminates the literal/variable forms a Value can take.
type ValueKind int

const (
	Variable ValueKind = iota
	IntValue
	FloatValue
	StringValue
	BlockValue
	BooleanValue
	NullValue
	EnumValue
	ListValue
	ObjectValue
)

// Value is a literal or variable reference prior to coercion. Scalar kinds
// keep the raw source text in Raw; List and Object kinds carry Children.
type Value struct {
	Kind     ValueKind
	Raw      string
	Children ChildValueList
	Position Position
}

// ChildValue is a list element (Name empty) or an object field.
type ChildValue struct {
	Name  string
	Value *Value
}

type ChildValueList []*ChildValue

func (l ChildValueList) ForName(name string) *Value {
	for _, c := range l {
		if c.Name == name {
			return c.Value
		}
	}
	return nil
}

// Type is a type reference as written in a document: a named type, a list
// wrapper, or either of those with a non-null marker.
type Type struct {
	NamedType string
	Elem      *Type
	NonNull   bool
	Position  Position
}

func (t *Type) String() string {
	var s string
	if t.NamedType != "" {
		s = t.NamedType
	} else if t.Elem != nil {
		s = "[" + t.Elem.String() + "]"
	}
	if t.NonNull {
		s += "!"
	}
	return s
}

// Name returns the innermost named type.
func (t *Type) Name() string {
	if t.NamedType != "" {
		return t.NamedType
	}
	if t.Elem != nil {
		return t.Elem.Name()
	}
	return ""
}
