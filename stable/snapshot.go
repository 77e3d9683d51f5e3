package stable

import (
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/dataloop-ml/datakit/errors"
)

// Bound pairs a function with the captured state that must participate in
// its canonical form. Go reflection cannot observe closure captures, so
// free-variable bindings are supplied explicitly; they are encoded sorted
// by name through the same serializer, never as a live namespace.
//
// Pass a *Bound when the bindings reference the Bound itself (a recursive
// function): the pointer is memoized before its definition is written, so
// the self-reference terminates as a back-reference.
type Bound struct {
	Fn   any
	Vars map[string]any
}

var (
	boundType    = reflect.TypeOf(Bound{})
	boundPtrType = reflect.TypeOf((*Bound)(nil))
)

// FuncSnapshot is the canonical description of a callable. For locatable
// functions only Module and Name participate (the function is encoded by
// reference). For anonymous functions the snapshot is encoded by value with
// source location stripped: File holds at most the base name of the
// defining file and Line is always zero, so two functions with identical
// logic defined at different locations serialize identically.
type FuncSnapshot struct {
	Module    string         // declaring package path
	Name      string         // qualified name; compiler-assigned funcN ordinals stripped for anonymous functions
	Signature string         // canonical type signature
	File      string         // base name of the defining file, "" for anonymous or ephemeral origins
	Line      int            // always zero
	Locatable bool           // reachable by importing Module and looking up Name
	Vars      map[string]any // free-variable bindings, nil unless built from a Bound
}

// anonSegment matches compiler-generated names for function literals,
// e.g. "pkg.Outer.func1" or "pkg.glob..func2.1".
var anonSegment = regexp.MustCompile(`\.func\d+(\.\d+)*`)

// SnapshotFunc builds the canonical snapshot of a callable without
// encoding it. fn must be a non-nil function value.
func SnapshotFunc(fn any) (*FuncSnapshot, error) {
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func {
		goType := "nil"
		if v.IsValid() {
			goType = v.Type().String()
		}
		return nil, errors.New(errors.PhaseSnapshot, errors.KindTypeMismatch).
			GoType(goType).
			Detail("expected a function value").
			Build()
	}
	if v.IsNil() {
		return nil, errors.New(errors.PhaseSnapshot, errors.KindInvalidData).
			Detail("cannot snapshot a nil function").
			Build()
	}
	return snapshotValue(v)
}

func snapshotValue(v reflect.Value) (*FuncSnapshot, error) {
	pc := v.Pointer()
	rf := runtime.FuncForPC(pc)
	if rf == nil {
		return nil, errors.New(errors.PhaseSnapshot, errors.KindNotFound).
			GoType(v.Type().String()).
			Detail("no runtime metadata for function entry").
			Build()
	}

	module, name := splitFuncName(rf.Name())
	anonymous := anonSegment.MatchString(name)
	methodValue := strings.HasSuffix(name, "-fm")

	// The funcN ordinal is assigned by source position within the enclosing
	// function, so it must not reach the canonical form: two literals with
	// identical bodies defined on different lines get different ordinals.
	// Only the enclosing declared name participates.
	if anonymous {
		name = strings.TrimRight(anonSegment.ReplaceAllString(name, ""), ".")
	}

	sn := &FuncSnapshot{
		Module:    module,
		Name:      name,
		Signature: v.Type().String(),
		Locatable: !anonymous && !methodValue,
	}

	// The file name is where the function was defined. Anonymous functions
	// and non-persistent origins (compiler-generated files are named in
	// angle brackets) carry no location at all; named functions keep only
	// the base name so moving a source tree does not change the encoding.
	// The line number is always dropped.
	file, _ := rf.FileLine(rf.Entry())
	base := filepath.Base(file)
	if !anonymous && !strings.HasPrefix(base, "<") {
		sn.File = base
	}

	return sn, nil
}

// splitFuncName splits a runtime function name into package path and
// qualified name, e.g. "github.com/x/pkg.(*T).M" into
// "github.com/x/pkg" and "(*T).M".
func splitFuncName(full string) (module, name string) {
	slash := strings.LastIndex(full, "/")
	tail := full[slash+1:]
	dot := strings.Index(tail, ".")
	if dot < 0 {
		return "", full
	}
	return full[:slash+1] + tail[:dot], tail[dot+1:]
}

func (s *Serializer) encodeFunc(v reflect.Value, vars map[string]any) error {
	sn, err := snapshotValue(v)
	if err != nil {
		return err
	}

	if sn.Locatable && len(vars) == 0 {
		Logger().Debug("function encoded by reference",
			zap.String("module", sn.Module), zap.String("name", sn.Name))
		payload, err := s.withBuffer(func() error {
			if err := s.enc.EncodeArrayLen(2); err != nil {
				return err
			}
			if err := s.enc.EncodeString(sn.Module); err != nil {
				return err
			}
			return s.enc.EncodeString(sn.Name)
		})
		if err != nil {
			return err
		}
		return s.writeExt(extFuncRef, payload)
	}

	Logger().Debug("function encoded by value",
		zap.String("module", sn.Module), zap.String("name", sn.Name),
		zap.Int("vars", len(vars)))

	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	payload, err := s.withBuffer(func() error {
		if err := s.enc.EncodeArrayLen(6); err != nil {
			return err
		}
		if err := s.enc.EncodeString(sn.Module); err != nil {
			return err
		}
		if err := s.enc.EncodeString(sn.Name); err != nil {
			return err
		}
		if err := s.enc.EncodeString(sn.Signature); err != nil {
			return err
		}
		if err := s.enc.EncodeString(sn.File); err != nil {
			return err
		}
		if err := s.enc.EncodeInt(0); err != nil {
			return err
		}
		if err := s.enc.EncodeMapLen(len(names)); err != nil {
			return err
		}
		for _, name := range names {
			if err := s.enc.EncodeString(name); err != nil {
				return err
			}
			s.push(name)
			err := s.Encode(vars[name])
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
	return s.writeExt(extFuncSnapshot, payload)
}

func (s *Serializer) encodeBound(b *Bound) error {
	fv := reflect.ValueOf(b.Fn)
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return errors.New(errors.PhaseSnapshot, errors.KindTypeMismatch).
			Path(s.errPath()...).
			Detail("Bound.Fn must be a non-nil function").
			Build()
	}
	return s.encodeFunc(fv, b.Vars)
}
