package executor

import (
	"fmt"
	"strconv"

	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

// coerceVariableValues coerces the raw variable values supplied with the
// request against the operation's variable definitions. A failure here is a
// request error: the operation does not execute.
func coerceVariableValues(
	s *schema.Schema,
	operation *language.OperationDefinition,
	variableValues map[string]any,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		ref := schema.TypeRefFromAST(varDef.Type)
		val, provided := variableValues[name]

		if !provided {
			if varDef.DefaultValue != nil {
				dv, err := coerceInputLiteral(s, varDef.DefaultValue, ref, nil)
				if err != nil {
					return nil, fmt.Errorf("variable $%s has invalid default value: %v", name, err)
				}
				coerced[name] = dv
				continue
			}
			if ref.IsNonNull() {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, varDef.Type.String())
			}
			continue
		}
		cv, err := coerceInputValue(s, val, ref)
		if err != nil {
			return nil, fmt.Errorf("variable $%s got invalid value: %v", name, err)
		}
		coerced[name] = cv
	}
	return coerced, nil
}

// coerceArgumentValues coerces a field's arguments using the coerced
// variables. A failure is reported by the caller as a field error.
func coerceArgumentValues(
	state *executionState,
	fieldDef *schema.Field,
	arguments language.ArgumentList,
) (map[string]any, error) {
	coerced := make(map[string]any)
	for _, argDef := range fieldDef.Arguments {
		arg := arguments.ForName(argDef.Name)
		if arg == nil {
			if argDef.HasDefault {
				coerced[argDef.Name] = argDef.DefaultValue
			} else if argDef.Type.IsNonNull() {
				return nil, fmt.Errorf("argument %q of required type %s was not provided", argDef.Name, argDef.Type.String())
			}
			continue
		}
		if arg.Value.Kind == language.Variable {
			if _, ok := state.variableValues[arg.Value.Raw]; !ok {
				if argDef.HasDefault {
					coerced[argDef.Name] = argDef.DefaultValue
				} else if argDef.Type.IsNonNull() {
					return nil, fmt.Errorf("argument %q of required type %s was not provided", argDef.Name, argDef.Type.String())
				}
				continue
			}
		}
		cv, err := coerceInputLiteral(state.schema, arg.Value, argDef.Type, state.variableValues)
		if err != nil {
			return nil, fmt.Errorf("argument %q got invalid value: %v", argDef.Name, err)
		}
		coerced[argDef.Name] = cv
	}
	return coerced, nil
}

// coerceInputValue coerces an external runtime value (a variable or a
// substituted variable inside a literal) to the given input type.
func coerceInputValue(s *schema.Schema, value any, ref *schema.TypeRef) (any, error) {
	if ref.IsNonNull() {
		if value == nil {
			return nil, fmt.Errorf("expected non-null value of type %s", ref.String())
		}
		return coerceInputValue(s, value, ref.Unwrap())
	}
	if value == nil {
		return nil, nil
	}
	if ref.IsList() {
		inner := ref.Unwrap()
		slice, ok := value.([]any)
		if !ok {
			// Single value coerces to a list of one.
			item, err := coerceInputValue(s, value, inner)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(slice))
		for i, item := range slice {
			cv, err := coerceInputValue(s, item, inner)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %v", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}

	named := s.Types[ref.GetNamedType()]
	if named == nil {
		return nil, fmt.Errorf("unknown type %s", ref.GetNamedType())
	}
	switch named.Kind {
	case schema.TypeKindScalar:
		if named.ParseValue != nil {
			return named.ParseValue(value)
		}
		return value, nil
	case schema.TypeKindEnum:
		str, ok := value.(string)
		if !ok || !named.HasEnumValue(str) {
			return nil, fmt.Errorf("value %v is not a member of enum %s", value, named.Name)
		}
		return str, nil
	case schema.TypeKindInputObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object for input type %s", named.Name)
		}
		return coerceInputObject(s, named, obj)
	default:
		return nil, fmt.Errorf("type %s is not an input type", named.Name)
	}
}

func coerceInputObject(s *schema.Schema, inputType *schema.Type, obj map[string]any) (map[string]any, error) {
	for key := range obj {
		if inputType.InputField(key) == nil {
			return nil, fmt.Errorf("field %q is not defined by input type %s", key, inputType.Name)
		}
	}
	out := make(map[string]any, len(inputType.InputFields))
	for _, fieldDef := range inputType.InputFields {
		val, provided := obj[fieldDef.Name]
		if !provided {
			if fieldDef.HasDefault {
				out[fieldDef.Name] = fieldDef.DefaultValue
			} else if fieldDef.Type.IsNonNull() {
				return nil, fmt.Errorf("required field %s.%s was not provided", inputType.Name, fieldDef.Name)
			}
			continue
		}
		cv, err := coerceInputValue(s, val, fieldDef.Type)
		if err != nil {
			return nil, fmt.Errorf("at field %s: %v", fieldDef.Name, err)
		}
		out[fieldDef.Name] = cv
	}
	return out, nil
}

// coerceInputLiteral coerces a document literal to the given input type.
// Variable references substitute their already-coerced values.
func coerceInputLiteral(s *schema.Schema, value *language.Value, ref *schema.TypeRef, variableValues map[string]any) (any, error) {
	if value != nil && value.Kind == language.Variable {
		// Variables were coerced up front against their declared types;
		// usage-site compatibility is the validator's concern.
		return coerceInputValue(s, variableValues[value.Raw], ref)
	}
	if ref.IsNonNull() {
		if value == nil || value.Kind == language.NullValue {
			return nil, fmt.Errorf("expected non-null value of type %s", ref.String())
		}
		return coerceInputLiteral(s, value, ref.Unwrap(), variableValues)
	}
	if value == nil || value.Kind == language.NullValue {
		return nil, nil
	}
	if ref.IsList() {
		inner := ref.Unwrap()
		if value.Kind != language.ListValue {
			item, err := coerceInputLiteral(s, value, inner, variableValues)
			if err != nil {
				return nil, err
			}
			return []any{item}, nil
		}
		out := make([]any, len(value.Children))
		for i, child := range value.Children {
			cv, err := coerceInputLiteral(s, child.Value, inner, variableValues)
			if err != nil {
				return nil, fmt.Errorf("at index %d: %v", i, err)
			}
			out[i] = cv
		}
		return out, nil
	}

	named := s.Types[ref.GetNamedType()]
	if named == nil {
		return nil, fmt.Errorf("unknown type %s", ref.GetNamedType())
	}
	switch named.Kind {
	case schema.TypeKindScalar:
		if named.ParseLiteral != nil {
			return named.ParseLiteral(value)
		}
		return astValueToGo(value), nil
	case schema.TypeKindEnum:
		if value.Kind != language.EnumValue || !named.HasEnumValue(value.Raw) {
			return nil, fmt.Errorf("value %s is not a member of enum %s", value.Raw, named.Name)
		}
		return value.Raw, nil
	case schema.TypeKindInputObject:
		if value.Kind != language.ObjectValue {
			return nil, fmt.Errorf("expected an object literal for input type %s", named.Name)
		}
		obj := make(map[string]any, len(value.Children))
		for _, child := range value.Children {
			fieldDef := named.InputField(child.Name)
			if fieldDef == nil {
				return nil, fmt.Errorf("field %q is not defined by input type %s", child.Name, named.Name)
			}
			cv, err := coerceInputLiteral(s, child.Value, fieldDef.Type, variableValues)
			if err != nil {
				return nil, fmt.Errorf("at field %s: %v", child.Name, err)
			}
			obj[child.Name] = cv
		}
		for _, fieldDef := range named.InputFields {
			if _, ok := obj[fieldDef.Name]; ok {
				continue
			}
			if fieldDef.HasDefault {
				obj[fieldDef.Name] = fieldDef.DefaultValue
			} else if fieldDef.Type.IsNonNull() {
				return nil, fmt.Errorf("required field %s.%s was not provided", named.Name, fieldDef.Name)
			}
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("type %s is not an input type", named.Name)
	}
}

// valueFromAST converts an AST value to a plain Go value, substituting
// variables. Used where no target type steers coercion, like directive
// arguments.
func valueFromAST(state *executionState, value *language.Value) any {
	if value == nil {
		return nil
	}
	if value.Kind == language.Variable {
		return state.variableValues[value.Raw]
	}
	return astValueToGo(value)
}

// astValueToGo converts an AST literal to a plain Go value.
func astValueToGo(value *language.Value) any {
	if value == nil {
		return nil
	}
	switch value.Kind {
	case language.IntValue:
		iv, _ := strconv.Atoi(value.Raw)
		return iv
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv
	case language.StringValue, language.BlockValue:
		return value.Raw
	case language.BooleanValue:
		return value.Raw == "true"
	case language.NullValue:
		return nil
	case language.EnumValue:
		return value.Raw
	case language.ListValue:
		out := make([]any, len(value.Children))
		for i, c := range value.Children {
			out[i] = astValueToGo(c.Value)
		}
		return out
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			m[f.Name] = astValueToGo(f.Value)
		}
		return m
	default:
		return nil
	}
}
