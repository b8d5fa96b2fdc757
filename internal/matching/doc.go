// Package matching compiles a mapping's request conditions into predicates.
//
// Every condition is a Predicate: it either holds for a request or it does
// not, and when it holds it may contribute named captures. A Matcher is the
// ordered list of predicates for one mapping and short-circuits on the first
// failure. Adding a new kind of condition means adding a Predicate; the
// iteration in Matcher and in the resolver stays untouched.
//
// Supported conditions, in evaluation order:
//
//   - method: case-insensitive equality
//   - url: exact path, ":name"/"{name}" segments, "^regex" with named groups,
//     or a doublestar glob
//   - query and headers: anchored regex per parameter or header
//   - body: unanchored regex over the raw body
//   - jsonPath: JSONPath expression, anchored regex over the first result
//   - xPath: element path, anchored regex over the element text or attribute
//   - when: an expr-lang boolean over the request and the captures so far
//
// Unnamed regex groups are captured as "<source>.<n>", counting from 1.
package matching
