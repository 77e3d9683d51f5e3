package stable

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"
	"sort"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dataloop-ml/datakit/errors"
)

// Extension type ids used by the canonical profile.
const (
	extMemoDef      int8 = 0x10 // first encounter of a memoized value: id + encoding
	extMemoRef      int8 = 0x11 // back-reference to a memoized value
	extFuncRef      int8 = 0x12 // locatable function: [package path, qualified name]
	extFuncSnapshot int8 = 0x13 // anonymous function: canonical snapshot record
	extStructRecord int8 = 0x14 // struct value: [type name, field map]
	extReduce       int8 = 0x15 // reduction recipe: constructor + arguments
)

// CacheBearer marks types carrying a mutable internal cache that must not
// affect the canonical form. The serializer detaches the cache for the
// duration of encoding and restores it afterward, also on error.
type CacheBearer interface {
	DetachCache() any
	RestoreCache(any)
}

// memoKey identifies a value by reference. Length participates for slices
// because distinct slices may share a backing array start.
type memoKey struct {
	addr uintptr
	len  int
	typ  reflect.Type
}

// Serializer drives one deterministic encoding pass over a value graph.
// It consults a registry of custom encoders, memoizes values by identity
// (never text), and emits canonical MessagePack. Not safe for concurrent
// use; create one per pass.
type Serializer struct {
	reg    *Registry
	w      io.Writer
	enc    *msgpack.Encoder
	memo   map[memoKey]uint32
	nextID uint32
	path   []string
}

// NewSerializer creates a serializer writing to w using the process-wide
// registry.
func NewSerializer(w io.Writer) *Serializer {
	return NewSerializerWithRegistry(DefaultRegistry, w)
}

// NewSerializerWithRegistry creates a serializer writing to w using reg.
func NewSerializerWithRegistry(reg *Registry, w io.Writer) *Serializer {
	return &Serializer{
		reg:  reg,
		w:    w,
		enc:  msgpack.NewEncoder(w),
		memo: make(map[memoKey]uint32),
	}
}

// Serialize encodes v into a deterministic byte sequence usable as a cache
// key or persisted blob.
func Serialize(v any) ([]byte, error) {
	return SerializeWith(DefaultRegistry, v)
}

// SerializeWith encodes v against a specific registry.
func SerializeWith(reg *Registry, v any) ([]byte, error) {
	buf := getBuf()
	defer putBuf(buf)

	if err := NewSerializerWithRegistry(reg, buf).Encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// Dump encodes v to w.
func Dump(v any, w io.Writer) error {
	return NewSerializer(w).Encode(v)
}

// Encode encodes one value. Custom encoders call it to recurse through the
// same pass, sharing the memo table.
func (s *Serializer) Encode(v any) error {
	return s.encode(reflect.ValueOf(v))
}

// Reduce emits a reduction recipe: a constructor name plus the arguments
// sufficient to reconstruct the value. Arguments are encoded through the
// current pass.
func (s *Serializer) Reduce(constructor string, args ...any) error {
	payload, err := s.withBuffer(func() error {
		if err := s.enc.EncodeString(constructor); err != nil {
			return err
		}
		if err := s.enc.EncodeArrayLen(len(args)); err != nil {
			return err
		}
		for _, a := range args {
			if err := s.encode(reflect.ValueOf(a)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.writeExt(extReduce, payload)
}

func (s *Serializer) encode(v reflect.Value) error {
	if !v.IsValid() {
		return s.enc.EncodeNil()
	}

	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return s.enc.EncodeNil()
		}
		return s.encode(v.Elem())
	}

	// Identity memo for reference kinds. Ids are assigned pre-order so a
	// value already being encoded further up the stack resolves to a
	// back-reference instead of recursing.
	if memoizable(v) {
		return s.memoize(v)
	}

	return s.encodeBody(v)
}

func (s *Serializer) encodeBody(v reflect.Value) error {
	// A registered encoder wins over every structural rule.
	if fn, ok := s.reg.Lookup(v.Type()); ok {
		return fn(s, v)
	}

	switch v.Type() {
	case boundType:
		b := v.Interface().(Bound)
		return s.encodeBound(&b)
	case boundPtrType:
		if v.IsNil() {
			return s.enc.EncodeNil()
		}
		return s.encodeBound(v.Interface().(*Bound))
	}

	if v.CanInterface() {
		if cb, ok := v.Interface().(CacheBearer); ok {
			saved := cb.DetachCache()
			err := s.encodeStructural(v)
			cb.RestoreCache(saved)
			return err
		}
	}

	return s.encodeStructural(v)
}

// memoizable reports whether a value is tracked by identity. Strings, and
// pointers to strings, are exempt: equal text must encode identically
// regardless of identity, so identity artifacts must never reach the
// stream for them. Byte slices stay memoizable, matching ordinary
// serializer behavior for binary data.
func memoizable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer:
		if v.Type().Elem().Kind() == reflect.String {
			return false
		}
	case reflect.Map, reflect.Slice, reflect.Func:
	default:
		return false
	}
	return !v.IsNil()
}

// memoize encodes a reference-kind value exactly once. The first encounter
// assigns the next id and frames the full encoding as a definition; every
// re-encounter, including a cycle hit while the definition is still being
// written, emits a back-reference to that id.
func (s *Serializer) memoize(v reflect.Value) error {
	key := memoKey{addr: v.Pointer(), typ: v.Type()}
	if v.Kind() == reflect.Slice {
		key.len = v.Len()
	}

	if id, ok := s.memo[key]; ok {
		var scratch [binary.MaxVarintLen32]byte
		n := binary.PutUvarint(scratch[:], uint64(id))
		return s.writeExt(extMemoRef, scratch[:n])
	}

	id := s.nextID
	s.nextID++
	s.memo[key] = id

	body, err := s.withBuffer(func() error {
		return s.encodeBody(v)
	})
	if err != nil {
		return err
	}

	payload := make([]byte, 0, binary.MaxVarintLen32+len(body))
	var scratch [binary.MaxVarintLen32]byte
	n := binary.PutUvarint(scratch[:], uint64(id))
	payload = append(payload, scratch[:n]...)
	payload = append(payload, body...)
	return s.writeExt(extMemoDef, payload)
}

func (s *Serializer) encodeStructural(v reflect.Value) error {
	switch v.Kind() {
	case reflect.Bool:
		return s.enc.EncodeBool(v.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return s.enc.EncodeInt(v.Int())

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return s.enc.EncodeUint(v.Uint())

	case reflect.Float32, reflect.Float64:
		return s.enc.EncodeFloat64(v.Float())

	case reflect.String:
		return s.enc.EncodeString(v.String())

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return s.enc.EncodeBytes(v.Bytes())
		}
		return s.encodeSequence(v)

	case reflect.Array:
		return s.encodeSequence(v)

	case reflect.Map:
		return s.encodeMap(v)

	case reflect.Struct:
		return s.encodeStruct(v)

	case reflect.Pointer:
		if v.IsNil() {
			return s.enc.EncodeNil()
		}
		return s.encode(v.Elem())

	case reflect.Func:
		if v.IsNil() {
			return s.enc.EncodeNil()
		}
		return s.encodeFunc(v, nil)

	default:
		return errors.UnsupportedType(errors.PhaseEncode, s.errPath(), v.Type().String())
	}
}

func (s *Serializer) encodeSequence(v reflect.Value) error {
	n := v.Len()
	if err := s.enc.EncodeArrayLen(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		s.push("[" + strconv.Itoa(i) + "]")
		err := s.encode(v.Index(i))
		s.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeMap emits entries sorted by the canonical encoding of their keys.
// Go map iteration order is randomized per run; sorting by encoded key
// bytes keeps the stream independent of it.
func (s *Serializer) encodeMap(v reflect.Value) error {
	type entry struct {
		key     reflect.Value
		sortKey []byte
	}

	entries := make([]entry, 0, v.Len())
	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		probe, err := probeEncode(s.reg, k)
		if err != nil {
			return err
		}
		entries = append(entries, entry{key: k, sortKey: probe})
	}
	sort.Slice(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].sortKey, entries[j].sortKey) < 0
	})

	if err := s.enc.EncodeMapLen(len(entries)); err != nil {
		return err
	}
	for _, e := range entries {
		if err := s.encode(e.key); err != nil {
			return err
		}
		s.push(keyLabel(e.key))
		err := s.encode(v.MapIndex(e.key))
		s.pop()
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Serializer) encodeStruct(v reflect.Value) error {
	t := v.Type()
	fields := make([]int, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).IsExported() {
			fields = append(fields, i)
		}
	}

	payload, err := s.withBuffer(func() error {
		if err := s.enc.EncodeString(structTypeName(t)); err != nil {
			return err
		}
		if err := s.enc.EncodeMapLen(len(fields)); err != nil {
			return err
		}
		for _, i := range fields {
			f := t.Field(i)
			if err := s.enc.EncodeString(f.Name); err != nil {
				return err
			}
			s.push(f.Name)
			err := s.encode(v.Field(i))
			s.pop()
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.writeExt(extStructRecord, payload)
}

// probeEncode canonically encodes a single value in isolation. Used to
// derive sort keys for map entries; the fresh memo table makes the probe
// deterministic regardless of the surrounding pass.
func probeEncode(reg *Registry, v reflect.Value) ([]byte, error) {
	buf := getBuf()
	defer putBuf(buf)

	if err := NewSerializerWithRegistry(reg, buf).encode(v); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

// withBuffer redirects the pass into a scratch buffer, preserving the memo
// table, and returns the bytes produced. Used to frame extension payloads
// whose length must be known up front.
func (s *Serializer) withBuffer(fn func() error) ([]byte, error) {
	oldW, oldEnc := s.w, s.enc
	buf := getBuf()
	s.w = buf
	s.enc = msgpack.NewEncoder(buf)

	err := fn()

	payload := make([]byte, buf.Len())
	copy(payload, buf.Bytes())
	putBuf(buf)
	s.w, s.enc = oldW, oldEnc

	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *Serializer) writeExt(id int8, payload []byte) error {
	if err := s.enc.EncodeExtHeader(id, len(payload)); err != nil {
		return err
	}
	_, err := s.w.Write(payload)
	return err
}

func (s *Serializer) push(segment string) {
	s.path = append(s.path, segment)
}

func (s *Serializer) pop() {
	s.path = s.path[:len(s.path)-1]
}

func (s *Serializer) errPath() []string {
	if len(s.path) == 0 {
		return nil
	}
	out := make([]string, len(s.path))
	copy(out, s.path)
	return out
}

func structTypeName(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func keyLabel(k reflect.Value) string {
	if k.Kind() == reflect.String {
		return k.String()
	}
	return "(" + k.Type().String() + " key)"
}
