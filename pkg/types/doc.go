// Package types defines the data model shared by the regapply interpreter:
// registry roots and value kinds, container paths, parsed script documents,
// coerced values, typed errors, and the store adapter contract.
//
// The interpreter pipeline is
//
//	text -> regtext.Parse -> *Document -> apply.Apply -> Store
//
// and every stage speaks in the types declared here. Nothing in this package
// performs I/O.
//
// Design goals:
//   - Closed enumerations (RootKey, ValueKind) resolved from their external
//     spellings through constant tables; no runtime registration.
//   - Small value types that are cheap to copy and compare.
//   - Typed errors with stable categories so callers branch on intent
//     rather than text.
package types
