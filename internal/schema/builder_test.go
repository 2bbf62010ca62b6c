package schema

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	language "github.com/quivergql/quiver/internal/language"
)

const testSDL = `
"A schema for testing the builder."
schema {
	query: Query
	mutation: Mutation
}

type Query {
	"Look up a node by id."
	node(id: ID!): Node
	search(term: String!, limit: Int = 20): [SearchResult!]!
	now: DateTime
}

type Mutation {
	rename(id: ID!, name: String!): User!
}

interface Node {
	id: ID!
}

interface Named {
	name: String!
}

type User implements Node & Named {
	id: ID!
	name: String!
	login: String @deprecated(reason: "use name")
}

type Post implements Node {
	id: ID!
	title: String!
}

union SearchResult = User | Post

enum Role {
	ADMIN
	MEMBER
	GUEST @deprecated
}

input RenameInput @oneOf {
	byId: ID
	byLogin: String
}

scalar DateTime @specifiedBy(url: "https://scalars.example/date-time")

directive @cacheControl(maxAge: Int = 0) repeatable on FIELD_DEFINITION
`

func buildTestSDL(t *testing.T, opts ...Option) *Schema {
	t.Helper()
	opts = append(opts, WithScalar("DateTime", ScalarConfig{
		Serialize:  func(v any) (any, error) { return v, nil },
		ParseValue: func(v any) (any, error) { return v, nil },
		ParseLiteral: func(v *language.Value) (any, error) {
			return v.Raw, nil
		},
	}))
	s, err := Build(testSDL, opts...)
	require.NoError(t, err)
	return s
}

func TestBuildRoots(t *testing.T) {
	s := buildTestSDL(t)
	require.Equal(t, "A schema for testing the builder.", s.Description)
	require.Equal(t, "Query", s.QueryType)
	require.Equal(t, "Mutation", s.MutationType)
	require.NotNil(t, s.GetQueryType())
	require.NotNil(t, s.GetMutationType())
	require.Nil(t, s.GetSubscriptionType())
}

func TestBuildObjectTypes(t *testing.T) {
	s := buildTestSDL(t)

	node := s.GetQueryType().Field("node")
	require.NotNil(t, node)
	require.Equal(t, "Look up a node by id.", node.Description)
	require.Equal(t, "Node", node.Type.String())
	require.Equal(t, "ID!", node.Argument("id").Type.String())

	search := s.GetQueryType().Field("search")
	require.Equal(t, "[SearchResult!]!", search.Type.String())
	limit := search.Argument("limit")
	require.True(t, limit.HasDefault)
	require.Equal(t, 20, limit.DefaultValue)

	user := s.Types["User"]
	require.Equal(t, TypeKindObject, user.Kind)
	require.Equal(t, []string{"Node", "Named"}, user.Interfaces)
	login := user.Field("login")
	require.True(t, login.IsDeprecated)
	require.Equal(t, "use name", login.DeprecationReason)
}

func TestBuildPossibleTypeLinking(t *testing.T) {
	s := buildTestSDL(t)

	require.ElementsMatch(t, []string{"User", "Post"}, s.Types["Node"].PossibleTypes)
	require.ElementsMatch(t, []string{"User"}, s.Types["Named"].PossibleTypes)
	require.Equal(t, []string{"User", "Post"}, s.Types["SearchResult"].PossibleTypes)
}

func TestBuildEnumAndInput(t *testing.T) {
	s := buildTestSDL(t)

	role := s.Types["Role"]
	require.Equal(t, TypeKindEnum, role.Kind)
	require.True(t, role.HasEnumValue("ADMIN"))
	require.False(t, role.HasEnumValue("NOBODY"))
	var guest *EnumValue
	for _, v := range role.EnumValues {
		if v.Name == "GUEST" {
			guest = v
		}
	}
	require.NotNil(t, guest)
	require.True(t, guest.IsDeprecated)
	require.Equal(t, "No longer supported", guest.DeprecationReason)

	input := s.Types["RenameInput"]
	require.Equal(t, TypeKindInputObject, input.Kind)
	require.True(t, input.OneOf)
	require.NotNil(t, input.InputField("byId"))
	require.Nil(t, input.InputField("missing"))
}

func TestBuildScalarAndDirective(t *testing.T) {
	s := buildTestSDL(t)

	dt := s.Types["DateTime"]
	require.Equal(t, TypeKindScalar, dt.Kind)
	require.NotNil(t, dt.Serialize)
	require.NotNil(t, dt.SpecifiedByURL)
	require.Equal(t, "https://scalars.example/date-time", *dt.SpecifiedByURL)

	cc := s.Directives["cacheControl"]
	require.NotNil(t, cc)
	require.True(t, cc.IsRepeatable)
	require.Equal(t, []string{"FIELD_DEFINITION"}, cc.Locations)
	maxAge := cc.Argument("maxAge")
	require.True(t, maxAge.HasDefault)
	require.Equal(t, 0, maxAge.DefaultValue)
}

func TestBuildBindsCapabilities(t *testing.T) {
	resolved := false
	s := buildTestSDL(t,
		WithResolver("Query.node", func(ctx context.Context, src any, args map[string]any) (any, error) {
			resolved = true
			return nil, nil
		}),
		WithTypeResolver("Node", func(ctx context.Context, value any) (string, error) {
			return "User", nil
		}),
		WithTypeResolver("SearchResult", func(ctx context.Context, value any) (string, error) {
			return "Post", nil
		}),
	)

	node := s.GetQueryType().Field("node")
	require.NotNil(t, node.Resolve)
	_, err := node.Resolve(context.Background(), nil, nil)
	require.NoError(t, err)
	require.True(t, resolved)

	require.NotNil(t, s.Types["Node"].ResolveType)
	require.NotNil(t, s.Types["SearchResult"].ResolveType)
	require.Nil(t, s.GetQueryType().Field("search").Resolve)
}

func TestBuildErrors(t *testing.T) {
	t.Run("unbound scalar", func(t *testing.T) {
		_, err := Build(`type Query { t: Custom } scalar Custom`)
		require.Error(t, err)
		require.Contains(t, err.Error(), "WithScalar")
	})

	t.Run("resolver on unknown field", func(t *testing.T) {
		_, err := Build(`type Query { a: Int }`,
			WithResolver("Query.missing", func(ctx context.Context, src any, args map[string]any) (any, error) {
				return nil, nil
			}))
		require.Error(t, err)
		require.Contains(t, err.Error(), `unknown field "missing"`)
	})

	t.Run("malformed coordinate", func(t *testing.T) {
		_, err := Build(`type Query { a: Int }`,
			WithResolver("nodot", func(ctx context.Context, src any, args map[string]any) (any, error) {
				return nil, nil
			}))
		require.Error(t, err)
		require.Contains(t, err.Error(), "Type.field")
	})

	t.Run("undefined type reference", func(t *testing.T) {
		_, err := Build(`type Query { a: Ghost }`)
		require.Error(t, err)
		require.Contains(t, err.Error(), `undefined type "Ghost"`)
	})

	t.Run("missing query root", func(t *testing.T) {
		_, err := Build(`type Other { a: Int }`)
		require.Error(t, err)
		require.Contains(t, err.Error(), "query root")
	})

	t.Run("bad SDL syntax", func(t *testing.T) {
		_, err := Build(`type Query {`)
		require.Error(t, err)
	})
}

func TestValidateSchema(t *testing.T) {
	base := func() *Schema {
		s := NewSchema("")
		s.SetQueryType("Query")
		s.AddType(NewType("Query", TypeKindObject, "").
			AddField(&Field{Name: "a", Type: NamedType("Int")}))
		return s
	}

	require.NoError(t, Validate(base()))

	t.Run("empty object", func(t *testing.T) {
		s := base()
		s.AddType(NewType("Empty", TypeKindObject, ""))
		err := Validate(s)
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least one field")
	})

	t.Run("non-null wrapping non-null", func(t *testing.T) {
		s := base()
		s.GetQueryType().AddField(&Field{
			Name: "bad",
			Type: &TypeRef{Kind: TypeRefKindNonNull, OfType: NonNullType(NamedType("Int"))},
		})
		err := Validate(s)
		require.Error(t, err)
		require.Contains(t, err.Error(), "NonNull cannot wrap NonNull")
	})

	t.Run("non-input argument type", func(t *testing.T) {
		s := base()
		s.GetQueryType().AddField(&Field{
			Name:      "bad",
			Type:      NamedType("Int"),
			Arguments: []*InputValue{{Name: "x", Type: NamedType("Query")}},
		})
		err := Validate(s)
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be an input type")
	})

	t.Run("union with non-object member", func(t *testing.T) {
		s := base()
		s.AddType(NewType("U", TypeKindUnion, "").AddPossibleType("Int"))
		err := Validate(s)
		require.Error(t, err)
		require.Contains(t, err.Error(), "must be a defined object type")
	})

	t.Run("accumulates violations", func(t *testing.T) {
		s := base()
		s.AddType(NewType("Empty", TypeKindObject, ""))
		s.AddType(NewType("E", TypeKindEnum, ""))
		err := Validate(s)
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least one field")
		require.Contains(t, err.Error(), "at least one value")
	})
}

func TestBuiltinCoercion(t *testing.T) {
	cases := []struct {
		scalar string
		in     any
		out    any
		ok     bool
	}{
		{"Int", 42, 42, true},
		{"Int", int64(7), 7, true},
		{"Int", 3.0, 3, true},
		{"Int", 3.5, nil, false},
		{"Int", "42", nil, false},
		{"Float", 1.5, 1.5, true},
		{"Float", 2, 2.0, true},
		{"Boolean", true, true, true},
		{"Boolean", "true", nil, false},
		{"String", "hi", "hi", true},
		{"String", 5, nil, false},
		{"ID", "u1", "u1", true},
		{"ID", 5, "5", true},
	}
	s := NewSchema("")
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s/%v", tc.scalar, tc.in), func(t *testing.T) {
			got, err := s.Types[tc.scalar].ParseValue(tc.in)
			if !tc.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.out, got)
		})
	}
}
