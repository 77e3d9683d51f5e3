package stable

import (
	"bytes"
	"encoding/binary"
	"io"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/vmihailenco/msgpack/v5/msgpcode"

	"github.com/dataloop-ml/datakit/errors"
)

// FuncRef is the decoded form of a locatable function: reconstruct it by
// importing Module and looking up Name.
type FuncRef struct {
	Module string
	Name   string
}

// Record is the decoded form of a struct value.
type Record struct {
	Type   string
	Fields map[string]any
}

// Reduced is the decoded form of a reduction recipe emitted by a custom
// encoder.
type Reduced struct {
	Constructor string
	Args        []any
}

// Ref marks a back-reference that could not be resolved in place, which
// happens only inside a cycle (the referenced definition is still being
// decoded). Callers encountering a Ref link it to the memo entry with the
// same id once decoding completes.
type Ref struct {
	ID uint64
}

// Deserialize decodes a canonical byte sequence produced by Serialize.
// Plain data comes back as Go scalars, []any and map[any]any. Extension
// frames decode to descriptor values: FuncRef, FuncSnapshot, Record and
// Reduced. Functions are not re-materialized; the serializer's contract is
// canonical identity, and descriptors keep the payload inspectable.
func Deserialize(b []byte) (any, error) {
	d := &decoder{
		dec:  msgpack.NewDecoder(bytes.NewReader(b)),
		memo: make(map[uint64]any),
	}
	return d.value()
}

type decoder struct {
	dec  *msgpack.Decoder
	memo map[uint64]any
}

func (d *decoder) value() (any, error) {
	c, err := d.dec.PeekCode()
	if err != nil {
		return nil, err
	}

	switch {
	case c == msgpcode.Nil:
		return nil, d.dec.DecodeNil()

	case c == msgpcode.False, c == msgpcode.True:
		return d.dec.DecodeBool()

	case msgpcode.IsFixedNum(c),
		c == msgpcode.Int8, c == msgpcode.Int16, c == msgpcode.Int32, c == msgpcode.Int64:
		return d.dec.DecodeInt64()

	case c == msgpcode.Uint8, c == msgpcode.Uint16, c == msgpcode.Uint32, c == msgpcode.Uint64:
		return d.dec.DecodeUint64()

	case c == msgpcode.Float, c == msgpcode.Double:
		return d.dec.DecodeFloat64()

	case msgpcode.IsString(c):
		return d.dec.DecodeString()

	case msgpcode.IsBin(c):
		return d.dec.DecodeBytes()

	case msgpcode.IsFixedArray(c), c == msgpcode.Array16, c == msgpcode.Array32:
		n, err := d.dec.DecodeArrayLen()
		if err != nil {
			return nil, err
		}
		out := make([]any, n)
		for i := 0; i < n; i++ {
			if out[i], err = d.value(); err != nil {
				return nil, err
			}
		}
		return out, nil

	case msgpcode.IsFixedMap(c), c == msgpcode.Map16, c == msgpcode.Map32:
		n, err := d.dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		out := make(map[any]any, n)
		for i := 0; i < n; i++ {
			k, err := d.value()
			if err != nil {
				return nil, err
			}
			v, err := d.value()
			if err != nil {
				return nil, err
			}
			if !hashableKey(k) {
				return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
					Detail("value of type %T cannot be used as a map key", k).
					Build()
			}
			out[k] = v
		}
		return out, nil

	case msgpcode.IsExt(c):
		return d.ext()

	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("unexpected msgpack code 0x%02x", c).
			Build()
	}
}

func (d *decoder) ext() (any, error) {
	id, n, err := d.dec.DecodeExtHeader()
	if err != nil {
		return nil, err
	}
	payload := make([]byte, n)
	if err := d.dec.ReadFull(payload); err != nil {
		return nil, err
	}

	switch id {
	case extMemoDef:
		br := bytes.NewReader(payload)
		memoID, err := binary.ReadUvarint(br)
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("malformed memo definition").
				Cause(err).
				Build()
		}
		v, err := d.nested(br)
		if err != nil {
			return nil, err
		}
		d.memo[memoID] = v
		return v, nil

	case extMemoRef:
		memoID, err := binary.ReadUvarint(bytes.NewReader(payload))
		if err != nil {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("malformed memo reference").
				Cause(err).
				Build()
		}
		if v, ok := d.memo[memoID]; ok {
			return v, nil
		}
		// Definition still in flight: a cycle.
		return Ref{ID: memoID}, nil

	case extFuncRef:
		parts, err := d.nestedArray(payload, 2)
		if err != nil {
			return nil, err
		}
		return FuncRef{
			Module: asString(parts[0]),
			Name:   asString(parts[1]),
		}, nil

	case extFuncSnapshot:
		parts, err := d.nestedArray(payload, 6)
		if err != nil {
			return nil, err
		}
		sn := FuncSnapshot{
			Module:    asString(parts[0]),
			Name:      asString(parts[1]),
			Signature: asString(parts[2]),
			File:      asString(parts[3]),
		}
		if vars, ok := parts[5].(map[any]any); ok && len(vars) > 0 {
			sn.Vars = make(map[string]any, len(vars))
			for k, v := range vars {
				sn.Vars[asString(k)] = v
			}
		}
		return sn, nil

	case extStructRecord:
		br := bytes.NewReader(payload)
		sub := &decoder{dec: msgpack.NewDecoder(br), memo: d.memo}
		typeName, err := sub.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		n, err := sub.dec.DecodeMapLen()
		if err != nil {
			return nil, err
		}
		rec := Record{Type: typeName, Fields: make(map[string]any, n)}
		for i := 0; i < n; i++ {
			name, err := sub.dec.DecodeString()
			if err != nil {
				return nil, err
			}
			if rec.Fields[name], err = sub.value(); err != nil {
				return nil, err
			}
		}
		return rec, nil

	case extReduce:
		br := bytes.NewReader(payload)
		sub := &decoder{dec: msgpack.NewDecoder(br), memo: d.memo}
		constructor, err := sub.dec.DecodeString()
		if err != nil {
			return nil, err
		}
		args, err := sub.value()
		if err != nil {
			return nil, err
		}
		list, ok := args.([]any)
		if !ok {
			return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Detail("reduction arguments are not an array").
				Build()
		}
		return Reduced{Constructor: constructor, Args: list}, nil

	default:
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("unknown extension type 0x%02x", id).
			Build()
	}
}

// nested decodes one value from r sharing the outer memo table.
func (d *decoder) nested(r io.Reader) (any, error) {
	sub := &decoder{dec: msgpack.NewDecoder(r), memo: d.memo}
	return sub.value()
}

func (d *decoder) nestedArray(payload []byte, want int) ([]any, error) {
	v, err := d.nested(bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok || len(list) != want {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Detail("expected a %d-element extension payload", want).
			Build()
	}
	return list, nil
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// hashableKey reports whether a decoded value can be inserted as a
// map[any]any key without panicking. Containers are not comparable, and
// neither are the descriptor values that carry them (Record, Reduced,
// FuncSnapshot); a comparable struct may still hide unhashable contents
// behind an interface field, so those are checked recursively.
func hashableKey(k any) bool {
	if k == nil {
		return true
	}
	t := reflect.TypeOf(k)
	if !t.Comparable() {
		return false
	}
	if t.Kind() == reflect.Struct {
		v := reflect.ValueOf(k)
		for i := 0; i < t.NumField(); i++ {
			f := v.Field(i)
			if f.Kind() != reflect.Interface || f.IsNil() || !f.CanInterface() {
				continue
			}
			if !hashableKey(f.Interface()) {
				return false
			}
		}
	}
	return true
}
