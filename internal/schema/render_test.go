package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	language "github.com/quivergql/quiver/internal/language"
)

const renderSDL = `
type Query {
	user(id: ID!): User
}

type User implements Node {
	id: ID!
	name: String @deprecated(reason: "gone")
}

interface Node {
	id: ID!
}

enum Role {
	ADMIN
	MEMBER
}

input Filter {
	term: String = "all"
	limit: Int = 10
}

union Thing = User

scalar Date @specifiedBy(url: "https://example.com/date")

directive @mine on FIELD
`

func dateScalar() Option {
	return WithScalar("Date", ScalarConfig{
		Serialize:    func(v any) (any, error) { return v, nil },
		ParseValue:   func(v any) (any, error) { return v, nil },
		ParseLiteral: func(v *language.Value) (any, error) { return v.Raw, nil },
	})
}

func TestRender(t *testing.T) {
	s, err := Build(renderSDL, dateScalar())
	require.NoError(t, err)

	want := `scalar Date @specifiedBy(url: "https://example.com/date")

input Filter {
  term: String = "all"
  limit: Int = 10
}

interface Node {
  id: ID!
}

type Query {
  user(id: ID!): User
}

enum Role {
  ADMIN
  MEMBER
}

union Thing = User

type User implements Node {
  id: ID!
  name: String @deprecated(reason: "gone")
}

directive @mine on FIELD
`
	if diff := cmp.Diff(want, Render(s)); diff != "" {
		t.Errorf("rendered SDL mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderStable(t *testing.T) {
	s, err := Build(renderSDL, dateScalar())
	require.NoError(t, err)
	first := Render(s)

	// The canonical form must be a fixed point of build-then-render.
	rebuilt, err := Build(first, dateScalar())
	require.NoError(t, err)
	require.Equal(t, first, Render(rebuilt))
}

func TestRenderDescriptions(t *testing.T) {
	s, err := Build(`
		"The root."
		type Query {
			"A field."
			a: Int
		}
	`)
	require.NoError(t, err)
	out := Render(s)
	require.Contains(t, out, "\"\"\"\nThe root.\n\"\"\"\ntype Query")
	require.Contains(t, out, "  \"\"\"\n  A field.\n  \"\"\"\n  a: Int")
}

func TestRenderOmitsBuiltins(t *testing.T) {
	s, err := Build(`type Query { a: Int }`)
	require.NoError(t, err)
	out := Render(s)
	require.NotContains(t, out, "scalar Int")
	require.NotContains(t, out, "directive @skip")
	require.NotContains(t, out, "__Schema")
}

func TestRenderValue(t *testing.T) {
	require.Equal(t, `"hi"`, RenderValue("hi"))
	require.Equal(t, "3", RenderValue(3))
	require.Equal(t, "1.5", RenderValue(1.5))
	require.Equal(t, "true", RenderValue(true))
	require.Equal(t, "null", RenderValue(nil))
	require.Equal(t, `[1, "two"]`, RenderValue([]any{1, "two"}))
	require.Equal(t, `{a: 1, b: null}`, RenderValue(map[string]any{"b": nil, "a": 1}))
}
