// Package executor implements a concurrent GraphQL executor over a resolver
// schema: goroutine-per-field resolution with a structured join, value
// completion with Non-Null null propagation, and located errors with partial
// success.
//
// # Execution Model
//
// Execution walks the operation's selection set against the schema's root
// type. At every object level the applicable fields are collected in document
// order (expanding fragments and honoring @skip/@include), then each response
// key is resolved in its own goroutine; the level's result object is
// assembled only after all of them join, so the response preserves
// collection order regardless of resolver timing. List elements complete
// concurrently the same way. Mutation root fields are the one exception:
// they run sequentially, in document order, each observing the side effects
// of the previous one.
//
// Resolver invocations optionally run under a semaphore cap
// (WithMaxConcurrency); the cap bounds in-flight resolver calls, not
// goroutines, so a deep tree cannot deadlock against its own children.
// Resolver panics are recovered into field errors.
//
// # Value Completion
//
//   - Non-Null: complete the inner type; a null result records a violation
//     and propagates null to the nearest nullable ancestor. A violation that
//     reaches the root nulls the entire data value.
//   - List: complete each element with an index-extended path. A null
//     element under a Non-Null element type nullifies the whole list.
//   - Leaf: serialize through the scalar's Serialize capability; enum
//     results must be members of the enum.
//   - Abstract: resolve the concrete object type via the type's ResolveType
//     capability (with a __typename-key fallback for map values), check it
//     against the possible types, then complete as an object.
//   - Object: execute the merged sub-selection against the resolved source.
//
// # Errors and Partial Success
//
// Field errors carry a message, source locations, and the response path;
// they are collected concurrently and ordered by path before assembly, so
// the error list is deterministic. A failing field nulls only its own
// subtree (subject to Non-Null propagation); sibling fields are unaffected.
// Request errors - unknown operation, uncoercible variables - produce a
// result with no data at all.
package executor
