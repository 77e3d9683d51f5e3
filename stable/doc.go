// Package stable provides deterministic, content-addressable serialization.
//
// The serializer produces byte-identical output for semantically identical
// values, regardless of execution context: same process, another process, a
// re-run. The output underlies reproducible cache-key computation, so any
// run-specific artifact (memory addresses, file paths, line numbers, map
// iteration order) is eliminated from the byte stream.
//
// # Wire Format
//
// Output is MessagePack, restricted to a canonical profile:
//
//   - Map entries are emitted sorted by the canonical encoding of their keys.
//   - Struct values are emitted as an extension frame carrying the full type
//     name and the exported fields in declaration order.
//   - Shared and cyclic references are emitted as memo back-references.
//   - Functions are emitted either as by-reference frames (package path +
//     qualified name) or as canonical snapshots with source location
//     stripped.
//
// Plain data (scalars, slices, maps) round-trips through any MessagePack
// decoder; the extension frames are resolved by Deserialize.
//
// # Memoization
//
// Identical-by-reference pointers, maps, slices and functions are encoded
// once and referenced afterwards. Memo ids are assigned in pre-order, so a
// value that participates in its own encoding terminates with a
// back-reference instead of recursing. Strings, and pointers to strings,
// are never memoized by identity: two distinct text objects with equal
// content encode identically.
//
// # Functions
//
// A function reachable by importing its package and looking up its name (a
// "locatable" function) is encoded by reference. Closures, method values
// and other anonymous functions are encoded by value as a FunctionSnapshot:
// the enclosing declared name with compiler ordinals stripped, signature,
// and the base name of the defining file with
// the line number zeroed, so two functions with identical logic defined at
// different locations serialize identically.
//
// Go reflection cannot observe the variables a closure captures. Captured
// state that must participate in the canonical form is supplied explicitly
// by wrapping the function in Bound, whose bindings are encoded sorted by
// name through the same serializer.
//
// # Custom Encoders
//
// Types with non-deterministic or irrelevant internal state register an
// encoder producing a reduction recipe (constructor name plus arguments):
//
//	stable.RegisterEncoder(reflect.TypeOf(&regexp.Regexp{}),
//		func(s *stable.Serializer, v reflect.Value) error {
//			return s.Reduce("regexp.MustCompile", v.Interface().(*regexp.Regexp).String())
//		})
//
// The registry is process-wide and consulted before every structural rule.
// Registration for a type replaces any earlier encoder silently.
//
// # Thread Safety
//
// The registry is safe for concurrent lookups; registration is expected at
// package initialization. A Serializer carries per-call state and is not
// safe for concurrent use; the package-level Serialize, Dump and Digest
// create one per call.
package stable
