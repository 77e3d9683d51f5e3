// Package nested applies transformations to every leaf of an arbitrarily
// nested data structure, optionally fanning the work out across a
// fixed-size worker pool with deterministic, order-preserving reassembly.
//
// # Model
//
// A nested value is any Go value. Maps are mappings, slices are sequences,
// fixed-size arrays are tuples; everything else, including byte slices, is
// a scalar leaf. Which container kinds are descended into is controlled by
// options; a container kind that is not traversed is treated as a leaf.
//
// The output of Map has exactly the same shape as the input: the same
// container kinds, the same keys, the same element order. Only leaf values
// change. When every transformed leaf remains assignable to the original
// element type the original container type is preserved; otherwise the
// container is rebuilt as map[any]any or []any with the shape intact.
//
// # Determinism
//
// Go maps iterate in randomized order, so the mapper visits map entries
// sorted by key. Sequential mapping applies the function strictly in that
// order; callers may rely on side effects occurring in it. The parallel
// path splits the leaf list into exactly one contiguous chunk per worker
// (sizes differing by at most one element) and concatenates results back
// in worker-index order, so the result is identical for every worker
// count.
//
// # Concurrency
//
// Workers are goroutines with static chunk assignment: no work stealing,
// no streaming of partial results, no cancellation. The first worker error
// fails the whole call after all workers finish. The only cross-worker
// shared mutable resource is the progress display lock.
//
// # Progress
//
// Progress display is best-effort: enabled by option, shown only when
// stderr is a terminal, and always disabled inside recursion and worker
// chunks so that a single coordinating bar is displayed.
package nested
