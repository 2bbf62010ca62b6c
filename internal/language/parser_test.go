package language

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Document {
	t.Helper()
	doc, err := ParseQuery(src)
	require.NoError(t, err)
	return doc
}

func TestParseShorthandQuery(t *testing.T) {
	doc := mustParse(t, "{ a b }")
	require.Len(t, doc.Operations, 1)
	op := doc.Operations[0]
	require.Equal(t, Query, op.Operation)
	require.Empty(t, op.Name)
	require.Len(t, op.SelectionSet, 2)

	a := op.SelectionSet[0].(*Field)
	require.Equal(t, "a", a.Name)
	require.Equal(t, "a", a.ResponseKey())
}

func TestParseNamedOperations(t *testing.T) {
	doc := mustParse(t, `
		query GetUser($id: ID!, $full: Boolean = false) @cached {
			user(id: $id) {
				short: name
				bio @include(if: $full)
			}
		}
		mutation DeleteUser {
			deleteUser(id: "u1")
		}
	`)
	require.Len(t, doc.Operations, 2)

	q := doc.Operations[0]
	require.Equal(t, Query, q.Operation)
	require.Equal(t, "GetUser", q.Name)
	require.Len(t, q.VariableDefinitions, 2)
	require.Equal(t, "id", q.VariableDefinitions[0].Variable)
	require.Equal(t, "ID!", q.VariableDefinitions[0].Type.String())
	require.Nil(t, q.VariableDefinitions[0].DefaultValue)
	require.Equal(t, BooleanValue, q.VariableDefinitions[1].DefaultValue.Kind)
	require.Equal(t, "cached", q.Directives[0].Name)

	user := q.SelectionSet[0].(*Field)
	require.Equal(t, "user", user.Name)
	require.Equal(t, Variable, user.Arguments.ForName("id").Value.Kind)
	name := user.SelectionSet[0].(*Field)
	require.Equal(t, "short", name.Alias)
	require.Equal(t, "name", name.Name)
	require.Equal(t, "short", name.ResponseKey())
	bio := user.SelectionSet[1].(*Field)
	require.Equal(t, "include", bio.Directives[0].Name)

	m := doc.Operations[1]
	require.Equal(t, Mutation, m.Operation)
	require.Equal(t, "DeleteUser", m.Name)
	require.Equal(t, doc.Operations.ForName("DeleteUser"), m)
	require.Nil(t, doc.Operations.ForName("Nope"))
}

func TestParseValueKinds(t *testing.T) {
	doc := mustParse(t, `{
		f(i: 3, fl: -1.5, s: "str", b: true, n: null, e: RED,
		  l: [1, $v, 3], o: {x: 1, y: {z: "deep"}})
	}`)
	args := doc.Operations[0].SelectionSet[0].(*Field).Arguments

	require.Equal(t, IntValue, args.ForName("i").Value.Kind)
	require.Equal(t, "3", args.ForName("i").Value.Raw)
	require.Equal(t, FloatValue, args.ForName("fl").Value.Kind)
	require.Equal(t, StringValue, args.ForName("s").Value.Kind)
	require.Equal(t, "str", args.ForName("s").Value.Raw)
	require.Equal(t, BooleanValue, args.ForName("b").Value.Kind)
	require.Equal(t, NullValue, args.ForName("n").Value.Kind)
	require.Equal(t, EnumValue, args.ForName("e").Value.Kind)
	require.Equal(t, "RED", args.ForName("e").Value.Raw)

	list := args.ForName("l").Value
	require.Equal(t, ListValue, list.Kind)
	require.Len(t, list.Children, 3)
	require.Equal(t, Variable, list.Children[1].Value.Kind)
	require.Equal(t, "v", list.Children[1].Value.Raw)

	obj := args.ForName("o").Value
	require.Equal(t, ObjectValue, obj.Kind)
	require.Equal(t, "deep", obj.Children.ForName("y").Children.ForName("z").Raw)
}

func TestParseFragments(t *testing.T) {
	doc := mustParse(t, `
		{
			hero {
				...heroFields
				... on Droid { primaryFunction }
				... @skip(if: true) { id }
			}
		}
		fragment heroFields on Character {
			name
		}
	`)
	hero := doc.Operations[0].SelectionSet[0].(*Field)
	require.Len(t, hero.SelectionSet, 3)

	spread := hero.SelectionSet[0].(*FragmentSpread)
	require.Equal(t, "heroFields", spread.Name)

	inline := hero.SelectionSet[1].(*InlineFragment)
	require.Equal(t, "Droid", inline.TypeCondition)

	bare := hero.SelectionSet[2].(*InlineFragment)
	require.Empty(t, bare.TypeCondition)
	require.Equal(t, "skip", bare.Directives[0].Name)

	frag := doc.Fragments.ForName("heroFields")
	require.NotNil(t, frag)
	require.Equal(t, "Character", frag.TypeCondition)
}

func TestParseTypeReferences(t *testing.T) {
	doc := mustParse(t, `query Q($a: Int, $b: Int!, $c: [Int], $d: [Int!]!, $e: [[String]]) { f }`)
	defs := doc.Operations[0].VariableDefinitions

	require.Equal(t, "Int", defs.ForName("a").Type.String())
	require.False(t, defs.ForName("a").Type.NonNull)
	require.Equal(t, "Int!", defs.ForName("b").Type.String())
	require.Equal(t, "[Int]", defs.ForName("c").Type.String())

	d := defs.ForName("d").Type
	require.Equal(t, "[Int!]!", d.String())
	require.True(t, d.NonNull)
	require.True(t, d.Elem.NonNull)
	require.Equal(t, "Int", d.Name())

	require.Equal(t, "String", defs.ForName("e").Type.Name())
}

func TestParsePositions(t *testing.T) {
	doc := mustParse(t, "{\n  user {\n    name\n  }\n}")
	user := doc.Operations[0].SelectionSet[0].(*Field)
	require.Equal(t, Position{Line: 2, Column: 3}, user.Position)
	name := user.SelectionSet[0].(*Field)
	require.Equal(t, Position{Line: 3, Column: 5}, name.Position)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"unclosed selection", "{ a", `expected "}"`},
		{"unclosed arguments", "{ a(x: 1", `expected ")"`},
		{"empty selection", "{ }", "at least one Selection"},
		{"missing selection", "query Q", `expected "{"`},
		{"bad definition", "type Query { a: Int }", `"query", "mutation", "subscription", or "fragment"`},
		{"fragment named on", "fragment on on Query { a }", "a fragment name"},
		{"trailing garbage", "{ a } junk", `"query", "mutation", "subscription", or "fragment"`},
		{"missing argument value", "{ a(x:) }", "a value"},
		{"anonymous in multi-op", "{ a }\nquery B { b }", "a named operation"},
		{"variable in const default", "query Q($a: Int = $b) { f }", "a constant value"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseQuery(tc.src)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestParseErrorPositions(t *testing.T) {
	_, err := ParseQuery("{\n  a(x:)\n}")
	require.Error(t, err)
	perr, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, Position{Line: 2, Column: 7}, perr.Pos)
	require.Contains(t, perr.AsError().Message, "Syntax Error")
}

func TestFormatRoundTrip(t *testing.T) {
	sources := []string{
		"{ a b }",
		`query GetUser($id: ID!, $lim: Int = 10) { user(id: $id) { friends(limit: $lim) { name } } }`,
		`mutation M @auth { save(input: {tags: ["a", "b"], count: 3}) }`,
		"{ hero { ...f ... on Droid @skip(if: false) { fn } } }\nfragment f on Character { name }",
		`{ alias: field(e: RED, n: null, f: 1.5) }`,
	}
	for _, src := range sources {
		t.Run(src[:min(len(src), 24)], func(t *testing.T) {
			doc := mustParse(t, src)
			formatted := Format(doc)
			reparsed, err := ParseQuery(formatted)
			require.NoError(t, err)
			require.Equal(t, formatted, Format(reparsed), "formatting is not a fixed point")
		})
	}
}

func TestFormatShorthand(t *testing.T) {
	doc := mustParse(t, "{ a }")
	out := Format(doc)
	require.True(t, strings.HasPrefix(out, "{"), "anonymous query stays shorthand: %q", out)

	doc = mustParse(t, "mutation { a }")
	out = Format(doc)
	require.True(t, strings.HasPrefix(out, "mutation"), "mutation keeps its keyword: %q", out)
}
