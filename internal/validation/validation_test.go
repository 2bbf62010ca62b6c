package validation

import (
	"testing"

	"github.com/stretchr/testify/require"

	introspection "github.com/quivergql/quiver/internal/introspection"
	language "github.com/quivergql/quiver/internal/language"
	schema "github.com/quivergql/quiver/internal/schema"
)

const testSDL = `
type Query {
	user(id: ID!): User
	users: [User!]!
	search: SearchResult
	version: String
	filter(where: Where): Int
	colored(c: Color): Int
}

type Mutation {
	rename(id: ID!, name: String!): User
}

interface Node {
	id: ID!
}

type User implements Node {
	id: ID!
	name: String
	posts: [Post]
}

type Post implements Node {
	id: ID!
	title: String
}

union SearchResult = User | Post

enum Color {
	RED
	GREEN
}

input Where {
	id: ID!
	tag: String
}
`

func testSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Build(testSDL)
	require.NoError(t, err)
	return s
}

func validate(t *testing.T, query string) []*Error {
	t.Helper()
	doc, err := language.ParseQuery(query)
	require.NoError(t, err)
	return Validate(testSchema(t), doc)
}

func requireViolation(t *testing.T, errs []*Error, rule, substr string) {
	t.Helper()
	for _, e := range errs {
		if e.Rule == rule {
			require.Contains(t, e.Message, substr)
			require.NotEmpty(t, e.Locations, "violation must carry a location")
			return
		}
	}
	t.Fatalf("no %s violation in %v", rule, errs)
}

func TestValidDocuments(t *testing.T) {
	queries := []string{
		`{ version }`,
		`{ user(id: "1") { id name posts { title } } }`,
		`query Q($id: ID!) { user(id: $id) { __typename name } }`,
		`{ search { ... on User { name } ... on Post { title } } }`,
		`{ users { ...userFields } } fragment userFields on User { id name }`,
		`query Q($v: Boolean!) { version @include(if: $v) }`,
		`mutation Rename { rename(id: "1", name: "x") { id } }`,
		`{ filter(where: {id: "1"}) }`,
		`{ colored(c: RED) }`,
		`query A { version } query B { version }`,
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			require.Empty(t, validate(t, q))
		})
	}
}

func TestOperationRules(t *testing.T) {
	requireViolation(t, validate(t, `query A { version } query A { version }`),
		"OperationDefinitions", `only one operation named "A"`)

	requireViolation(t, validate(t, `subscription S { version }`),
		"OperationDefinitions", "does not support subscription")
}

func TestFragmentRules(t *testing.T) {
	requireViolation(t, validate(t, `{ users { ...nope } }`),
		"Fragments", `unknown fragment "nope"`)

	requireViolation(t, validate(t,
		`{ users { ...f } } fragment f on User { id } fragment f on User { name }`),
		"Fragments", `only one fragment named "f"`)

	requireViolation(t, validate(t,
		`{ users { ...f } } fragment f on Ghost { id }`),
		"Fragments", `unknown type "Ghost"`)

	requireViolation(t, validate(t,
		`{ users { ...f } } fragment f on String { id }`),
		"Fragments", "non-composite")

	requireViolation(t, validate(t,
		`{ users { ...a } } fragment a on User { ...b } fragment b on User { ...a }`),
		"Fragments", "cannot be spread within itself")
}

func TestFieldRules(t *testing.T) {
	requireViolation(t, validate(t, `{ nope }`),
		"FieldsOnCorrectType", `cannot query field "nope" on type "Query"`)

	requireViolation(t, validate(t, `{ user(id: "1") { secrets } }`),
		"FieldsOnCorrectType", `cannot query field "secrets" on type "User"`)

	requireViolation(t, validate(t, `{ search { name } }`),
		"FieldsOnCorrectType", "union type")

	requireViolation(t, validate(t, `{ version { length } }`),
		"FieldsOnCorrectType", "must not have a selection set")

	requireViolation(t, validate(t, `{ users }`),
		"FieldsOnCorrectType", "must have a selection set")

	requireViolation(t, validate(t, `{ user(id: "1") { ... on Ghost { id } } }`),
		"FieldsOnCorrectType", `unknown type "Ghost"`)

	// User and Post share no possible type, so the condition can never hold.
	requireViolation(t, validate(t, `{ user(id: "1") { ... on Post { title } } }`),
		"FieldsOnCorrectType", "can never apply")

	requireViolation(t, validate(t,
		`{ user(id: "1") { ...pf } } fragment pf on Post { title }`),
		"FieldsOnCorrectType", "can never apply")

	// A fragment on an interface applies to implementors.
	require.Empty(t, validate(t,
		`{ user(id: "1") { ... on Node { id } } }`))
}

func TestArgumentRules(t *testing.T) {
	requireViolation(t, validate(t, `{ user(id: "1", flag: true) { id } }`),
		"Arguments", `unknown argument "flag"`)

	requireViolation(t, validate(t, `{ user { id } }`),
		"Arguments", `required argument "id"`)

	requireViolation(t, validate(t, `{ user(id: null) { id } }`),
		"Arguments", "null for non-null")

	requireViolation(t, validate(t, `{ colored(c: BLUE) }`),
		"Arguments", `not a member of enum "Color"`)

	requireViolation(t, validate(t, `{ colored(c: 3) }`),
		"Arguments", `not a member of enum "Color"`)

	requireViolation(t, validate(t, `{ filter(where: {id: "1", bogus: 2}) }`),
		"Arguments", `unknown field "bogus"`)

	requireViolation(t, validate(t, `{ filter(where: {tag: "x"}) }`),
		"Arguments", `required field "id"`)

	requireViolation(t, validate(t, `{ filter(where: 3) }`),
		"Arguments", "expected an input object")
}

func TestDirectiveRules(t *testing.T) {
	requireViolation(t, validate(t, `{ version @mystery }`),
		"KnownDirectives", "unknown directive @mystery")

	requireViolation(t, validate(t, `query Q @skip(if: true) { version }`),
		"KnownDirectives", "not allowed on QUERY")

	requireViolation(t, validate(t, `{ version @skip }`),
		"KnownDirectives", `required argument "if"`)

	requireViolation(t, validate(t, `{ version @skip(if: true, unless: false) }`),
		"KnownDirectives", `unknown argument "unless"`)
}

func TestVariableRules(t *testing.T) {
	requireViolation(t, validate(t, `query Q($a: ID!, $a: ID!) { user(id: $a) { id } }`),
		"Variables", "only one variable named $a")

	requireViolation(t, validate(t, `query Q($a: Ghost) { version }`),
		"Variables", "unknown type")

	requireViolation(t, validate(t, `query Q($a: User) { version }`),
		"Variables", "cannot have output type")

	requireViolation(t, validate(t, `query Q($a: ID!) { version }`),
		"Variables", "never used")

	requireViolation(t, validate(t, `query Q { user(id: $mystery) { id } }`),
		"Variables", "$mystery is not declared")

	// Nullable variable at a non-null site needs a default.
	requireViolation(t, validate(t, `query Q($id: ID) { user(id: $id) { id } }`),
		"Variables", "cannot be used where")
	require.Empty(t, validate(t, `query Q($id: ID = "1") { user(id: $id) { id } }`))
	require.Empty(t, validate(t, `query Q($id: ID!) { user(id: $id) { id } }`))

	// Structure must match through lists and input objects.
	requireViolation(t, validate(t, `query Q($w: Color) { filter(where: $w) }`),
		"Variables", "cannot be used where")
	require.Empty(t, validate(t, `query Q($w: Where) { filter(where: $w) }`))
	require.Empty(t, validate(t, `query Q($tag: String) { filter(where: {id: "1", tag: $tag}) }`))
}

func TestIntrospectionFields(t *testing.T) {
	// __typename is implicit everywhere, including union members.
	require.Empty(t, validate(t, `{ __typename search { __typename } users { __typename } }`))

	// Against an unextended schema the root entry points are tolerated,
	// but only at the query root.
	require.Empty(t, validate(t, `{ __schema { queryType { name } } }`))
	require.Empty(t, validate(t, `{ __type(name: "User") { name } }`))
	requireViolation(t, validate(t, `{ user(id: "1") { __schema { queryType { name } } } }`),
		"FieldsOnCorrectType", `cannot query field "__schema" on type "User"`)
	requireViolation(t, validate(t, `{ user(id: "1") { __type(name: "User") { name } } }`),
		"FieldsOnCorrectType", `cannot query field "__type" on type "User"`)

	// An introspection-extended schema defines the entry points as real
	// fields, so their sub-selections are checked like any other.
	extended := introspection.Extend(testSchema(t))
	doc, err := language.ParseQuery(`{ __schema { bogus } }`)
	require.NoError(t, err)
	requireViolation(t, Validate(extended, doc),
		"FieldsOnCorrectType", `cannot query field "bogus" on type "__Schema"`)

	doc, err = language.ParseQuery(`{ __schema { types { name } } }`)
	require.NoError(t, err)
	require.Empty(t, Validate(extended, doc))
}
