// Package introspection extends a schema with the __schema and __type entry
// points and the __Type/__Field/__InputValue/__EnumValue/__Directive object
// types behind them. The introspection fields are ordinary resolver-backed
// fields, so the executor needs no special handling beyond __typename.
package introspection

import (
	"context"

	schema "github.com/quivergql/quiver/internal/schema"
)

// Extend returns a copy of s with the introspection types registered and the
// __schema and __type fields attached to the query root type. Introspection
// responses describe the original schema; the meta types themselves are not
// listed.
func Extend(original *schema.Schema) *schema.Schema {
	extended := &schema.Schema{
		QueryType:        original.QueryType,
		MutationType:     original.MutationType,
		SubscriptionType: original.SubscriptionType,
		Types:            make(map[string]*schema.Type, len(original.Types)+8),
		Directives:       original.Directives,
		Description:      original.Description,
	}
	for name, typ := range original.Types {
		extended.Types[name] = typ
	}

	extended.Types["__Schema"] = schemaType(original)
	extended.Types["__Type"] = typeType(original)
	extended.Types["__Field"] = fieldType()
	extended.Types["__InputValue"] = inputValueType()
	extended.Types["__EnumValue"] = enumValueType()
	extended.Types["__Directive"] = directiveType()
	extended.Types["__TypeKind"] = typeKindEnum()
	extended.Types["__DirectiveLocation"] = directiveLocationEnum()

	queryType := original.GetQueryType()
	if queryType == nil {
		return extended
	}

	// The query root gets a copy so the caller's schema stays untouched.
	queryCopy := *queryType
	queryCopy.Fields = make([]*schema.Field, len(queryType.Fields), len(queryType.Fields)+2)
	copy(queryCopy.Fields, queryType.Fields)
	queryCopy.Fields = append(queryCopy.Fields,
		&schema.Field{
			Name:        "__schema",
			Description: "Access the current type schema of this server.",
			Type:        schema.NonNullType(schema.NamedType("__Schema")),
			Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
				return original, nil
			},
		},
		&schema.Field{
			Name:        "__type",
			Description: "Request the type information of a single type.",
			Arguments: []*schema.InputValue{
				{
					Name:        "name",
					Description: "The name of the type to look up.",
					Type:        schema.NonNullType(schema.NamedType("String")),
				},
			},
			Type: schema.NamedType("__Type"),
			Resolve: func(ctx context.Context, source any, args map[string]any) (any, error) {
				name, _ := args["name"].(string)
				t := original.Types[name]
				if t == nil {
					return nil, nil
				}
				return t, nil
			},
		},
	)
	extended.Types[queryCopy.Name] = &queryCopy

	return extended
}

func schemaType(src *schema.Schema) *schema.Type {
	return &schema.Type{
		Name:        "__Schema",
		Kind:        schema.TypeKindObject,
		Description: "A GraphQL Schema defines the capabilities of a GraphQL server.",
		Fields: []*schema.Field{
			{
				Name:        "description",
				Type:        schema.NamedType("String"),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return nullableString(s.Description) }),
			},
			{
				Name:        "types",
				Description: "A list of all types supported by this server.",
				Type:        schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Type")))),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return sortedTypes(s) }),
			},
			{
				Name:        "queryType",
				Description: "The type that query operations will be rooted at.",
				Type:        schema.NonNullType(schema.NamedType("__Type")),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return s.GetQueryType() }),
			},
			{
				Name:        "mutationType",
				Description: "If this server supports mutation, the type that mutation operations will be rooted at.",
				Type:        schema.NamedType("__Type"),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return orNilType(s.GetMutationType()) }),
			},
			{
				Name:        "subscriptionType",
				Description: "If this server support subscription, the type that subscription operations will be rooted at.",
				Type:        schema.NamedType("__Type"),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return orNilType(s.GetSubscriptionType()) }),
			},
			{
				Name:        "directives",
				Description: "A list of all directives supported by this server.",
				Type:        schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__Directive")))),
				Resolve:     onSchema(func(s *schema.Schema, args map[string]any) any { return sortedDirectives(s) }),
			},
		},
	}
}

// typeType serves both named type definitions and List/NonNull wrappers: the
// source is either a *schema.Type or a *schema.TypeRef.
func typeType(src *schema.Schema) *schema.Type {
	return &schema.Type{
		Name:        "__Type",
		Kind:        schema.TypeKindObject,
		Description: "The fundamental unit of any GraphQL Schema is the type.",
		Fields: []*schema.Field{
			{
				Name:    "kind",
				Type:    schema.NonNullType(schema.NamedType("__TypeKind")),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any { return string(t.Kind) }, resolveRefKind),
			},
			{
				Name:    "name",
				Type:    schema.NamedType("String"),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any { return t.Name }, wrapperNil),
			},
			{
				Name:    "description",
				Type:    schema.NamedType("String"),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any { return nullableString(t.Description) }, wrapperNil),
			},
			{
				Name: "fields",
				Arguments: []*schema.InputValue{
					{Name: "includeDeprecated", Type: schema.NamedType("Boolean"), DefaultValue: false, HasDefault: true},
				},
				Type:    schema.ListType(schema.NonNullType(schema.NamedType("__Field"))),
				Resolve: onType(src, resolveTypeFields, wrapperNil),
			},
			{
				Name:    "interfaces",
				Type:    schema.ListType(schema.NonNullType(schema.NamedType("__Type"))),
				Resolve: onType(src, resolverWithSchema(src, resolveTypeInterfaces), wrapperNil),
			},
			{
				Name:    "possibleTypes",
				Type:    schema.ListType(schema.NonNullType(schema.NamedType("__Type"))),
				Resolve: onType(src, resolverWithSchema(src, resolveTypePossibleTypes), wrapperNil),
			},
			{
				Name: "enumValues",
				Arguments: []*schema.InputValue{
					{Name: "includeDeprecated", Type: schema.NamedType("Boolean"), DefaultValue: false, HasDefault: true},
				},
				Type:    schema.ListType(schema.NonNullType(schema.NamedType("__EnumValue"))),
				Resolve: onType(src, resolveTypeEnumValues, wrapperNil),
			},
			{
				Name: "inputFields",
				Arguments: []*schema.InputValue{
					{Name: "includeDeprecated", Type: schema.NamedType("Boolean"), DefaultValue: false, HasDefault: true},
				},
				Type:    schema.ListType(schema.NonNullType(schema.NamedType("__InputValue"))),
				Resolve: onType(src, resolveTypeInputFields, wrapperNil),
			},
			{
				Name:    "ofType",
				Type:    schema.NamedType("__Type"),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any { return nil }, resolveRefOfType),
			},
			{
				Name:    "specifiedByURL",
				Type:    schema.NamedType("String"),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any {
					if t.SpecifiedByURL == nil {
						return nil
					}
					return *t.SpecifiedByURL
				}, wrapperNil),
			},
			{
				Name:    "isOneOf",
				Type:    schema.NamedType("Boolean"),
				Resolve: onType(src, func(t *schema.Type, args map[string]any) any { return t.OneOf }, wrapperNil),
			},
		},
	}
}

func fieldType() *schema.Type {
	return &schema.Type{
		Name: "__Field",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			{Name: "name", Type: schema.NonNullType(schema.NamedType("String")), Resolve: onField(func(f *schema.Field, args map[string]any) any { return f.Name })},
			{Name: "description", Type: schema.NamedType("String"), Resolve: onField(func(f *schema.Field, args map[string]any) any { return nullableString(f.Description) })},
			{
				Name: "args",
				Arguments: []*schema.InputValue{
					{Name: "includeDeprecated", Type: schema.NamedType("Boolean"), DefaultValue: false, HasDefault: true},
				},
				Type:    schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))),
				Resolve: onField(func(f *schema.Field, args map[string]any) any { return filterInputValues(f.Arguments, args) }),
			},
			{Name: "type", Type: schema.NonNullType(schema.NamedType("__Type")), Resolve: onField(func(f *schema.Field, args map[string]any) any { return f.Type })},
			{Name: "isDeprecated", Type: schema.NonNullType(schema.NamedType("Boolean")), Resolve: onField(func(f *schema.Field, args map[string]any) any { return f.IsDeprecated })},
			{Name: "deprecationReason", Type: schema.NamedType("String"), Resolve: onField(func(f *schema.Field, args map[string]any) any {
				return deprecationReason(f.IsDeprecated, f.DeprecationReason)
			})},
		},
	}
}

func inputValueType() *schema.Type {
	return &schema.Type{
		Name: "__InputValue",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			{Name: "name", Type: schema.NonNullType(schema.NamedType("String")), Resolve: onInputValue(func(v *schema.InputValue) any { return v.Name })},
			{Name: "description", Type: schema.NamedType("String"), Resolve: onInputValue(func(v *schema.InputValue) any { return nullableString(v.Description) })},
			{Name: "type", Type: schema.NonNullType(schema.NamedType("__Type")), Resolve: onInputValue(func(v *schema.InputValue) any { return v.Type })},
			{Name: "defaultValue", Type: schema.NamedType("String"), Resolve: onInputValue(func(v *schema.InputValue) any {
				if !v.HasDefault {
					return nil
				}
				return schema.RenderValue(v.DefaultValue)
			})},
			{Name: "isDeprecated", Type: schema.NonNullType(schema.NamedType("Boolean")), Resolve: onInputValue(func(v *schema.InputValue) any { return v.IsDeprecated })},
			{Name: "deprecationReason", Type: schema.NamedType("String"), Resolve: onInputValue(func(v *schema.InputValue) any {
				return deprecationReason(v.IsDeprecated, v.DeprecationReason)
			})},
		},
	}
}

func enumValueType() *schema.Type {
	return &schema.Type{
		Name: "__EnumValue",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			{Name: "name", Type: schema.NonNullType(schema.NamedType("String")), Resolve: onEnumValue(func(v *schema.EnumValue) any { return v.Name })},
			{Name: "description", Type: schema.NamedType("String"), Resolve: onEnumValue(func(v *schema.EnumValue) any { return nullableString(v.Description) })},
			{Name: "isDeprecated", Type: schema.NonNullType(schema.NamedType("Boolean")), Resolve: onEnumValue(func(v *schema.EnumValue) any { return v.IsDeprecated })},
			{Name: "deprecationReason", Type: schema.NamedType("String"), Resolve: onEnumValue(func(v *schema.EnumValue) any {
				return deprecationReason(v.IsDeprecated, v.DeprecationReason)
			})},
		},
	}
}

func directiveType() *schema.Type {
	return &schema.Type{
		Name: "__Directive",
		Kind: schema.TypeKindObject,
		Fields: []*schema.Field{
			{Name: "name", Type: schema.NonNullType(schema.NamedType("String")), Resolve: onDirective(func(d *schema.Directive, args map[string]any) any { return d.Name })},
			{Name: "description", Type: schema.NamedType("String"), Resolve: onDirective(func(d *schema.Directive, args map[string]any) any { return nullableString(d.Description) })},
			{Name: "isRepeatable", Type: schema.NonNullType(schema.NamedType("Boolean")), Resolve: onDirective(func(d *schema.Directive, args map[string]any) any { return d.IsRepeatable })},
			{
				Name:    "locations",
				Type:    schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__DirectiveLocation")))),
				Resolve: onDirective(func(d *schema.Directive, args map[string]any) any { return sortedLocations(d) }),
			},
			{
				Name: "args",
				Arguments: []*schema.InputValue{
					{Name: "includeDeprecated", Type: schema.NamedType("Boolean"), DefaultValue: false, HasDefault: true},
				},
				Type:    schema.NonNullType(schema.ListType(schema.NonNullType(schema.NamedType("__InputValue")))),
				Resolve: onDirective(func(d *schema.Directive, args map[string]any) any { return filterInputValues(d.Arguments, args) }),
			},
		},
	}
}

func typeKindEnum() *schema.Type {
	return &schema.Type{
		Name: "__TypeKind",
		Kind: schema.TypeKindEnum,
		EnumValues: []*schema.EnumValue{
			{Name: "SCALAR"},
			{Name: "OBJECT"},
			{Name: "INTERFACE"},
			{Name: "UNION"},
			{Name: "ENUM"},
			{Name: "INPUT_OBJECT"},
			{Name: "LIST"},
			{Name: "NON_NULL"},
		},
	}
}

func directiveLocationEnum() *schema.Type {
	return &schema.Type{
		Name: "__DirectiveLocation",
		Kind: schema.TypeKindEnum,
		EnumValues: []*schema.EnumValue{
			{Name: "QUERY"},
			{Name: "MUTATION"},
			{Name: "SUBSCRIPTION"},
			{Name: "FIELD"},
			{Name: "FRAGMENT_DEFINITION"},
			{Name: "FRAGMENT_SPREAD"},
			{Name: "INLINE_FRAGMENT"},
			{Name: "VARIABLE_DEFINITION"},
			{Name: "SCHEMA"},
			{Name: "SCALAR"},
			{Name: "OBJECT"},
			{Name: "FIELD_DEFINITION"},
			{Name: "ARGUMENT_DEFINITION"},
			{Name: "INTERFACE"},
			{Name: "UNION"},
			{Name: "ENUM"},
			{Name: "ENUM_VALUE"},
			{Name: "INPUT_OBJECT"},
			{Name: "INPUT_FIELD_DEFINITION"},
		},
	}
}
