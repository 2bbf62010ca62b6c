package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	language "github.com/quivergql/quiver/internal/language"
)

func builtinScalars() []*Type {
	return []*Type{stringType, intType, floatType, booleanType, idType}
}

// IsBuiltin reports whether the named type is one of the built-in
// scalars, which are present in every schema and omitted from SDL rendering.
func IsBuiltin(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return false
}

var stringType = &Type{
	Name:        "String",
	Kind:        TypeKindScalar,
	Description: "The `String` scalar type represents textual data, represented as UTF-8 character sequences.",
	Serialize:   serializeString,
	ParseValue:  parseStringValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.StringValue && v.Kind != language.BlockValue {
			return nil, fmt.Errorf("String cannot represent a non string value")
		}
		return v.Raw, nil
	},
}

var intType = &Type{
	Name:        "Int",
	Kind:        TypeKindScalar,
	Description: "The `Int` scalar type represents non-fractional signed whole numeric values.",
	Serialize:   serializeInt,
	ParseValue:  parseIntValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.IntValue {
			return nil, fmt.Errorf("Int cannot represent non integer value: %s", v.Raw)
		}
		n, err := strconv.ParseInt(v.Raw, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent value out of 32-bit range: %s", v.Raw)
		}
		return int(n), nil
	},
}

var floatType = &Type{
	Name:        "Float",
	Kind:        TypeKindScalar,
	Description: "The `Float` scalar type represents signed double-precision fractional values.",
	Serialize:   serializeFloat,
	ParseValue:  parseFloatValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.IntValue && v.Kind != language.FloatValue {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %s", v.Raw)
		}
		return strconv.ParseFloat(v.Raw, 64)
	},
}

var booleanType = &Type{
	Name:        "Boolean",
	Kind:        TypeKindScalar,
	Description: "The `Boolean` scalar type represents `true` or `false`.",
	Serialize:   serializeBoolean,
	ParseValue:  parseBooleanValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.BooleanValue {
			return nil, fmt.Errorf("Boolean cannot represent non boolean value: %s", v.Raw)
		}
		return v.Raw == "true", nil
	},
}

var idType = &Type{
	Name:        "ID",
	Kind:        TypeKindScalar,
	Description: "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.",
	Serialize:   serializeID,
	ParseValue:  parseIDValue,
	ParseLiteral: func(v *language.Value) (any, error) {
		if v.Kind != language.StringValue && v.Kind != language.IntValue {
			return nil, fmt.Errorf("ID cannot represent value: %s", v.Raw)
		}
		return v.Raw, nil
	},
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	}
	return nil, fmt.Errorf("String cannot represent %T", value)
}

func parseStringValue(value any) (any, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	return nil, fmt.Errorf("String cannot represent a non string value: %v", value)
}

func serializeInt(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int8:
		return int(v), nil
	case int16:
		return int(v), nil
	case int32:
		return int(v), nil
	case int64:
		if v > math.MaxInt32 || v < math.MinInt32 {
			return nil, fmt.Errorf("Int cannot represent value out of 32-bit range: %d", v)
		}
		return int(v), nil
	case uint:
		return int(v), nil
	case uint32:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		return int(v), nil
	}
	return nil, fmt.Errorf("Int cannot represent %T", value)
}

func parseIntValue(value any) (any, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("Int cannot represent value: %v", v)
		}
		return int(n), nil
	}
	return nil, fmt.Errorf("Int cannot represent value: %v (%T)", value, value)
}

func serializeFloat(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return nil, fmt.Errorf("Float cannot represent %T", value)
}

func parseFloatValue(value any) (any, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	}
	return nil, fmt.Errorf("Float cannot represent value: %v (%T)", value, value)
}

func serializeBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent %T", value)
}

func parseBooleanValue(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent value: %v", value)
}

func serializeID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return nil, fmt.Errorf("ID cannot represent %T", value)
}

func parseIDValue(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, fmt.Errorf("ID cannot represent value: %v", v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v (%T)", value, value)
}

var includeDirective = &Directive{
	Name:        "include",
	Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Included when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
}

var skipDirective = &Directive{
	Name:        "skip",
	Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
	Arguments: []*InputValue{
		{
			Name:        "if",
			Description: "Skipped when true.",
			Type:        NonNullType(NamedType("Boolean")),
		},
	},
	Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
}

var deprecatedDirective = &Directive{
	Name:        "deprecated",
	Description: "Marks an element of a GraphQL schema as no longer supported.",
	Arguments: []*InputValue{
		{
			Name:         "reason",
			Description:  "Explains why this element was deprecated.",
			Type:         NamedType("String"),
			DefaultValue: "No longer supported",
			HasDefault:   true,
		},
	},
	Locations: []string{"FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INPUT_FIELD_DEFINITION", "ENUM_VALUE"},
}
