package language

import (
	"strconv"
	"strings"
)

// Format renders a document back into query-language text. The output parses
// to a structurally equal document.
func Format(doc *Document) string {
	var b strings.Builder
	for i, op := range doc.Operations {
		if i > 0 {
			b.WriteString("\n")
		}
		formatOperation(&b, op)
	}
	for _, frag := range doc.Fragments {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		formatFragment(&b, frag)
	}
	return b.String()
}

func formatOperation(b *strings.Builder, op *OperationDefinition) {
	shorthand := op.Operation == Query && op.Name == "" &&
		len(op.VariableDefinitions) == 0 && len(op.Directives) == 0
	if !shorthand {
		b.WriteString(string(op.Operation))
		if op.Name != "" {
			b.WriteString(" ")
			b.WriteString(op.Name)
		}
		if len(op.VariableDefinitions) > 0 {
			b.WriteString("(")
			for i, def := range op.VariableDefinitions {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString("$")
				b.WriteString(def.Variable)
				b.WriteString(": ")
				b.WriteString(def.Type.String())
				if def.DefaultValue != nil {
					b.WriteString(" = ")
					formatValue(b, def.DefaultValue)
				}
			}
			b.WriteString(")")
		}
		formatDirectives(b, op.Directives)
		b.WriteString(" ")
	}
	formatSelectionSet(b, op.SelectionSet, 0)
	b.WriteString("\n")
}

func formatFragment(b *strings.Builder, frag *FragmentDefinition) {
	b.WriteString("fragment ")
	b.WriteString(frag.Name)
	b.WriteString(" on ")
	b.WriteString(frag.TypeCondition)
	formatDirectives(b, frag.Directives)
	b.WriteString(" ")
	formatSelectionSet(b, frag.SelectionSet, 0)
	b.WriteString("\n")
}

func formatSelectionSet(b *strings.Builder, set SelectionSet, depth int) {
	b.WriteString("{\n")
	for _, sel := range set {
		b.WriteString(strings.Repeat("  ", depth+1))
		formatSelection(b, sel, depth+1)
		b.WriteString("\n")
	}
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString("}")
}

func formatSelection(b *strings.Builder, sel Selection, depth int) {
	switch s := sel.(type) {
	case *Field:
		if s.Alias != "" && s.Alias != s.Name {
			b.WriteString(s.Alias)
			b.WriteString(": ")
		}
		b.WriteString(s.Name)
		formatArguments(b, s.Arguments)
		formatDirectives(b, s.Directives)
		if len(s.SelectionSet) > 0 {
			b.WriteString(" ")
			formatSelectionSet(b, s.SelectionSet, depth)
		}
	case *FragmentSpread:
		b.WriteString("...")
		b.WriteString(s.Name)
		formatDirectives(b, s.Directives)
	case *InlineFragment:
		b.WriteString("...")
		if s.TypeCondition != "" {
			b.WriteString(" on ")
			b.WriteString(s.TypeCondition)
		}
		formatDirectives(b, s.Directives)
		b.WriteString(" ")
		formatSelectionSet(b, s.SelectionSet, depth)
	}
}

func formatArguments(b *strings.Builder, args ArgumentList) {
	if len(args) == 0 {
		return
	}
	b.WriteString("(")
	for i, arg := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(arg.Name)
		b.WriteString(": ")
		formatValue(b, arg.Value)
	}
	b.WriteString(")")
}

func formatDirectives(b *strings.Builder, dirs DirectiveList) {
	for _, d := range dirs {
		b.WriteString(" @")
		b.WriteString(d.Name)
		formatArguments(b, d.Arguments)
	}
}

func formatValue(b *strings.Builder, v *Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case Variable:
		b.WriteString("$")
		b.WriteString(v.Raw)
	case StringValue, BlockValue:
		b.WriteString(strconv.Quote(v.Raw))
	case ListValue:
		b.WriteString("[")
		for i, c := range v.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			formatValue(b, c.Value)
		}
		b.WriteString("]")
	case ObjectValue:
		b.WriteString("{")
		for i, c := range v.Children {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(c.Name)
			b.WriteString(": ")
			formatValue(b, c.Value)
		}
		b.WriteString("}")
	default:
		b.WriteString(v.Raw)
	}
}
