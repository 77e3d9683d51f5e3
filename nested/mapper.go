package nested

import (
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/dataloop-ml/datakit/errors"
)

// Func transforms a single leaf value.
type Func func(any) (any, error)

// Map applies fn to every leaf of v, preserving the structure's shape,
// and returns the rebuilt structure. Traversal and execution are
// controlled by options; see the package documentation for the
// determinism and concurrency guarantees.
//
// Mapping is all-or-nothing: on the first error no partial result is
// returned.
func Map(fn Func, v any, opts ...Option) (any, error) {
	o := buildOptions(opts)

	// A non-traversable input is a single leaf.
	if !o.traversable(v) {
		return fn(v)
	}

	items, rebuild := children(v, o)
	n := len(items)

	// Parallelism only pays off when there is more than one chunk's worth
	// of top-level items.
	if o.workers <= 1 || n <= o.workers {
		mapped, err := mapSequential(fn, items, o)
		if err != nil {
			return nil, err
		}
		return rebuild(mapped), nil
	}

	mapped, err := mapParallel(fn, items, o.workers, o)
	if err != nil {
		return nil, err
	}
	return rebuild(mapped), nil
}

// mapSequential applies fn to each top-level item strictly in order.
func mapSequential(fn Func, items []any, o options) ([]any, error) {
	bar := newProgressBar(o, len(items))
	defer bar.close()

	mapped := make([]any, len(items))
	for i, item := range items {
		r, err := mapOne(fn, item, o)
		if err != nil {
			return nil, err
		}
		mapped[i] = r
		bar.increment()
	}
	return mapped, nil
}

// mapParallel fans the top-level items out to a fixed pool of workers,
// one contiguous chunk each, and concatenates results in rank order.
func mapParallel(fn Func, items []any, workers int, o options) ([]any, error) {
	chunks := splitChunks(items, workers)

	assigned := 0
	for _, c := range chunks {
		assigned += len(c.items)
	}
	if assigned != len(items) {
		return nil, errors.ChunkMismatch(len(items), assigned)
	}

	Logger().Info("spawning workers",
		zap.Int("workers", workers),
		zap.Int("items", len(items)),
		zap.Ints("chunk_sizes", chunkSizes(chunks)),
		zap.String("label", o.label))

	bar := newProgressBar(o, len(items))
	defer bar.close()

	results := make([][]any, len(chunks))
	errs := make([]error, len(chunks))

	var wg sync.WaitGroup
	for _, c := range chunks {
		wg.Add(1)
		go func(c workChunk) {
			defer wg.Done()
			out := make([]any, len(c.items))
			for i, item := range c.items {
				r, err := mapOne(fn, item, o)
				if err != nil {
					errs[c.rank] = err
					return
				}
				out[i] = r
				bar.increment()
			}
			results[c.rank] = out
		}(c)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	Logger().Info("workers finished", zap.Int("workers", workers))

	mapped := make([]any, 0, len(items))
	for _, out := range results {
		mapped = append(mapped, out...)
	}

	Logger().Info("unpacked results", zap.Int("items", len(mapped)))
	return mapped, nil
}

// mapOne recurses into a single item sequentially. Progress is reported
// only at the top level, by the caller.
func mapOne(fn Func, v any, o options) (any, error) {
	if !o.traversable(v) {
		return fn(v)
	}
	items, rebuild := children(v, o)
	mapped := make([]any, len(items))
	for i, item := range items {
		r, err := mapOne(fn, item, o)
		if err != nil {
			return nil, err
		}
		mapped[i] = r
	}
	return rebuild(mapped), nil
}

var anyType = reflect.TypeOf((*any)(nil)).Elem()

// children returns the direct children of a traversable container in
// deterministic order, together with a rebuild function that reassembles
// mapped children into a container of the same shape. The original
// container type is preserved when every mapped child remains assignable
// to its element type; otherwise the rebuild degrades to map[any]any or
// []any.
func children(v any, o options) ([]any, func([]any) any) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Map:
		keys := sortedKeys(rv)
		items := make([]any, len(keys))
		for i, key := range keys {
			items[i] = rv.MapIndex(key).Interface()
		}
		elem := rv.Type().Elem()
		return items, func(mapped []any) any {
			if allAssignable(mapped, elem) {
				out := reflect.MakeMapWithSize(rv.Type(), len(keys))
				for i, key := range keys {
					out.SetMapIndex(key, assignableValue(mapped[i], elem))
				}
				return out.Interface()
			}
			out := make(map[any]any, len(keys))
			for i, key := range keys {
				out[key.Interface()] = mapped[i]
			}
			return out
		}

	case reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		elem := rv.Type().Elem()
		return items, func(mapped []any) any {
			t := elem
			if !allAssignable(mapped, t) {
				t = anyType
			}
			out := reflect.New(reflect.ArrayOf(len(mapped), t)).Elem()
			for i, m := range mapped {
				out.Index(i).Set(assignableValue(m, t))
			}
			return out.Interface()
		}

	default: // slice
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		elem := rv.Type().Elem()
		return items, func(mapped []any) any {
			if allAssignable(mapped, elem) {
				out := reflect.MakeSlice(rv.Type(), len(mapped), len(mapped))
				for i, m := range mapped {
					out.Index(i).Set(assignableValue(m, elem))
				}
				return out.Interface()
			}
			out := make([]any, len(mapped))
			copy(out, mapped)
			return out
		}
	}
}

func allAssignable(values []any, t reflect.Type) bool {
	for _, v := range values {
		if v == nil {
			if t.Kind() != reflect.Interface {
				return false
			}
			continue
		}
		if !reflect.TypeOf(v).AssignableTo(t) {
			return false
		}
	}
	return true
}

func assignableValue(v any, t reflect.Type) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	return reflect.ValueOf(v)
}
