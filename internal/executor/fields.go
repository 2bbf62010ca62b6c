package executor

import (
	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

// collectedFieldMap preserves field order from the original query
type collectedFieldMap struct {
	fields []collectedField
	index  map[string]int
}

type collectedField struct {
	ResponseKey string
	Fields      []*language.Field
}

func newCollectedFieldMap() *collectedFieldMap {
	return &collectedFieldMap{index: make(map[string]int)}
}

func (cfm *collectedFieldMap) add(responseKey string, field *language.Field) {
	if idx, exists := cfm.index[responseKey]; exists {
		cfm.fields[idx].Fields = append(cfm.fields[idx].Fields, field)
		return
	}
	cfm.index[responseKey] = len(cfm.fields)
	cfm.fields = append(cfm.fields, collectedField{
		ResponseKey: responseKey,
		Fields:      []*language.Field{field},
	})
}

func (cfm *collectedFieldMap) orderedFields() []collectedField {
	return cfm.fields
}

// collectFields groups the selections that apply to objectType by response
// key, in document order, expanding fragments and honoring @skip/@include.
func collectFields(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet) *collectedFieldMap {
	grouped := newCollectedFieldMap()
	visited := make(map[string]bool)
	collectFieldsImpl(state, objectType, selectionSet, grouped, visited)
	return grouped
}

func collectFieldsImpl(state *executionState, objectType *schema.Type, selectionSet language.SelectionSet, grouped *collectedFieldMap, visitedFragments map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *language.Field:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			grouped.add(sel.ResponseKey(), sel)

		case *language.InlineFragment:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if !fragmentApplies(state, sel.TypeCondition, objectType) {
				continue
			}
			collectFieldsImpl(state, objectType, sel.SelectionSet, grouped, visitedFragments)

		case *language.FragmentSpread:
			if !shouldIncludeNode(state, sel.Directives) {
				continue
			}
			if visitedFragments[sel.Name] {
				continue
			}
			visitedFragments[sel.Name] = true

			fragmentDef := state.document.Fragments.ForName(sel.Name)
			if fragmentDef == nil {
				continue
			}
			if !fragmentApplies(state, fragmentDef.TypeCondition, objectType) {
				continue
			}
			collectFieldsImpl(state, objectType, fragmentDef.SelectionSet, grouped, visitedFragments)
		}
	}
}

// fragmentApplies reports whether a fragment with the given type condition
// selects into objectType. Interface and union conditions match any of their
// possible object types.
func fragmentApplies(state *executionState, typeCondition string, objectType *schema.Type) bool {
	if typeCondition == "" || typeCondition == objectType.Name {
		return true
	}
	return state.schema.IsPossibleType(typeCondition, objectType.Name)
}

// shouldIncludeNode evaluates @skip and @include against the request
// variables. @skip wins when both are present.
func shouldIncludeNode(state *executionState, directives language.DirectiveList) bool {
	if skip := directives.ForName("skip"); skip != nil {
		if cond, ok := directiveCondition(state, skip); ok && cond {
			return false
		}
	}
	if include := directives.ForName("include"); include != nil {
		if cond, ok := directiveCondition(state, include); ok && !cond {
			return false
		}
	}
	return true
}

func directiveCondition(state *executionState, directive *language.Directive) (bool, bool) {
	arg := directive.Arguments.ForName("if")
	if arg == nil {
		return false, false
	}
	v := valueFromAST(state, arg.Value)
	b, ok := v.(bool)
	return b, ok
}

// getFieldDefinition resolves a selected field against the object type.
// __typename is available everywhere; __schema and __type are ordinary
// fields attached to the query root by the introspection extension.
func getFieldDefinition(state *executionState, objectType *schema.Type, fieldName string) *schema.Field {
	if fieldName == "__typename" {
		return typenameFieldDef
	}
	return objectType.Field(fieldName)
}

// typenameFieldDef backs the __typename meta field, available on every
// composite type without being declared on it.
var typenameFieldDef = &schema.Field{
	Name: "__typename",
	Type: schema.NonNullType(schema.NamedType("String")),
}
