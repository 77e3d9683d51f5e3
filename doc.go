// Package datakit provides deterministic content hashing and parallel
// traversal utilities for dataset tooling.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	datakit/
//	├── stable/      Deterministic serialization, digests and sharded cache paths
//	├── nested/      Parallel leaf mapping over nested structures
//	├── datautil/    Size formatting, disk probing and small map helpers
//	├── errors/      Structured error types for debugging
//	└── cmd/         The stablehash command line tool
//
// # Quick Start
//
// Hash a configuration value so that equal content always produces the
// same cache key:
//
//	digest, err := stable.Digest(map[string]any{
//	    "dataset": "wikitext",
//	    "split":   "train",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(stable.ShardedPath(digest))
//
// Apply a transformation to every leaf of a nested structure across a
// pool of workers:
//
//	out, err := nested.Map(resolveURL, manifest, nested.WithWorkers(8))
//
// # Determinism
//
// Both packages guarantee output that is independent of Go's randomized
// map iteration order and of the number of workers used. See the stable
// and nested package documentation for the exact contracts.
//
// # Thread Safety
//
// Serializers are single-goroutine objects; the package-level helpers
// create one per call and are safe for concurrent use. The default
// encoder registry may be read and extended concurrently. nested.Map is
// safe to call from multiple goroutines as long as the mapped function
// is.
package datakit
