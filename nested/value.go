package nested

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
)

// Kind classifies a value's role in a nested structure.
type Kind int

const (
	// KindScalar is a leaf value.
	KindScalar Kind = iota
	// KindMapping is a map.
	KindMapping
	// KindSequence is a slice, except byte slices which stay scalar.
	KindSequence
	// KindTuple is a fixed-size array.
	KindTuple
)

var byteSliceType = reflect.TypeOf([]byte(nil))

// KindOf reports how a value is treated by traversal.
func KindOf(v any) Kind {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		return KindMapping
	case reflect.Slice:
		if rv.Type() == byteSliceType {
			return KindScalar
		}
		return KindSequence
	case reflect.Array:
		return KindTuple
	default:
		return KindScalar
	}
}

// traversable reports whether the mapper descends into v under the
// configured traversal options.
func (o options) traversable(v any) bool {
	switch KindOf(v) {
	case KindMapping:
		return true
	case KindSequence:
		return o.slices && !o.mapsOnly
	case KindTuple:
		return o.arrays && !o.mapsOnly
	default:
		return false
	}
}

// Flatten returns the leaves of v in deterministic traversal order:
// map entries sorted by key, slice and array elements in index order.
// By default both slices and arrays are traversed; pass options to
// restrict traversal.
func Flatten(v any, opts ...Option) []any {
	o := defaultOptions()
	o.arrays = true
	for _, opt := range opts {
		opt(&o)
	}
	var leaves []any
	flattenInto(&leaves, v, o)
	return leaves
}

func flattenInto(leaves *[]any, v any, o options) {
	if !o.traversable(v) {
		*leaves = append(*leaves, v)
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		for _, key := range sortedKeys(rv) {
			flattenInto(leaves, rv.MapIndex(key).Interface(), o)
		}
	default:
		for i := 0; i < rv.Len(); i++ {
			flattenInto(leaves, rv.Index(i).Interface(), o)
		}
	}
}

// sortedKeys returns the map's keys in a deterministic order so that
// traversal does not depend on Go's randomized map iteration.
func sortedKeys(m reflect.Value) []reflect.Value {
	keys := m.MapKeys()
	sort.Slice(keys, func(i, j int) bool {
		return compareKeys(keys[i], keys[j]) < 0
	})
	return keys
}

func compareKeys(a, b reflect.Value) int {
	ka, kb := concreteKey(a), concreteKey(b)

	switch {
	case ka.Kind() == reflect.String && kb.Kind() == reflect.String:
		return strings.Compare(ka.String(), kb.String())
	case isInt(ka) && isInt(kb):
		switch {
		case ka.Int() < kb.Int():
			return -1
		case ka.Int() > kb.Int():
			return 1
		}
		return 0
	case isUint(ka) && isUint(kb):
		switch {
		case ka.Uint() < kb.Uint():
			return -1
		case ka.Uint() > kb.Uint():
			return 1
		}
		return 0
	}
	// Mixed or exotic key types fall back to their printed form.
	return strings.Compare(fmt.Sprint(ka), fmt.Sprint(kb))
}

func concreteKey(v reflect.Value) reflect.Value {
	if v.Kind() == reflect.Interface && !v.IsNil() {
		return v.Elem()
	}
	return v
}

func isInt(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return true
	}
	return false
}

func isUint(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
