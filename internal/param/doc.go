// Package param models the expected step arguments of a feature scenario
// and the equality rules used to compare them against actual results.
//
// A Parameter is a sealed union with two variants:
//   - Scalar: a single literal value (string, number, boolean, null)
//   - Tokens: an ordered, non-empty sequence of symbolic tokens such as
//     T.label, which denotes an access path rather than a value
//
// Key design constraints:
//   - Equality and hashing are both derived from one canonical form, so
//     equal parameters always hash equal
//   - Token sequences compare element-wise and in order; no reordering,
//     deduplication, or normalisation
//   - Comparing across variants returns false, never panics
//   - Tokens.Value always fails with NotSupportedError; callers branch on
//     Kind (or Type) before extracting a value
//   - Parameters are immutable after construction and safe for concurrent
//     reads
package param
