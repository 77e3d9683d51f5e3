package datautil

import (
	"cmp"
	"iter"
	"slices"

	"github.com/dataloop-ml/datakit/errors"
)

// ZipDict iterates the given maps in lockstep: for every key it yields
// the key and the values from each map in argument order. All maps must
// share the same key set. Keys are visited in sorted order so iteration
// does not depend on Go's randomized map order.
func ZipDict[K cmp.Ordered, V any](dicts ...map[K]V) (iter.Seq2[K, []V], error) {
	seen := map[K]struct{}{}
	var keys []K
	for _, d := range dicts {
		for k := range d {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	for _, k := range keys {
		for _, d := range dicts {
			if _, ok := d[k]; !ok {
				return nil, errors.KeyMismatch(k)
			}
		}
	}
	slices.Sort(keys)

	return func(yield func(K, []V) bool) {
		for _, k := range keys {
			values := make([]V, len(dicts))
			for i, d := range dicts {
				values[i] = d[k]
			}
			if !yield(k, values) {
				return
			}
		}
	}, nil
}

// UniqueValues filters a sequence down to its first occurrences,
// preserving order.
func UniqueValues[T comparable](values iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		seen := map[T]struct{}{}
		for v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			if !yield(v) {
				return
			}
		}
	}
}

// FirstNonNil returns the index and value of the first non-nil element,
// or (-1, nil) when every element is nil.
func FirstNonNil(values []any) (int, any) {
	for i, v := range values {
		if v != nil {
			return i, v
		}
	}
	return -1, nil
}
