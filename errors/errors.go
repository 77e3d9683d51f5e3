package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseEncode   Phase = "encode"   // value graph to canonical bytes
	PhaseDecode   Phase = "decode"   // canonical bytes to values
	PhaseSnapshot Phase = "snapshot" // function snapshot construction
	PhaseRegistry Phase = "registry" // encoder registration and lookup
	PhaseMap      Phase = "map"      // nested traversal and dispatch
	PhaseParse    Phase = "parse"    // size strings, patterns, zipped keys
	PhaseProbe    Phase = "probe"    // filesystem probing
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType Kind = "unsupported_type"
	KindTypeMismatch    Kind = "type_mismatch"
	KindInvalidData     Kind = "invalid_data"
	KindChunkMismatch   Kind = "chunk_mismatch"
	KindKeyMismatch     Kind = "key_mismatch"
	KindDuplicateKey    Kind = "duplicate_key"
	KindInvalidSize     Kind = "invalid_size"
	KindInvalidPattern  Kind = "invalid_pattern"
	KindOverflow        Kind = "overflow"
	KindRegistration    Kind = "registration"
	KindNotFound        Kind = "not_found"
)

// Error is the structured error type used throughout the library
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	GoType string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.GoType != "" {
		b.WriteString(": Go type ")
		b.WriteString(e.GoType)
	}

	if e.Detail != "" {
		if e.GoType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// GoType sets the Go type name
func (b *Builder) GoType(t string) *Builder {
	b.err.GoType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// UnsupportedType creates an unsupported type error naming the offending type
func UnsupportedType(phase Phase, path []string, goType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedType,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("no encoder registered for type %s", goType),
	}
}

// ChunkMismatch creates a chunk accounting error
func ChunkMismatch(total, assigned int) *Error {
	return &Error{
		Phase:  PhaseMap,
		Kind:   KindChunkMismatch,
		Detail: fmt.Sprintf("error dividing inputs among workers: total number of objects %d, assigned %d", total, assigned),
		Value:  assigned,
	}
}

// KeyMismatch creates a mismatched key set error for zipped mappings
func KeyMismatch(key any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindKeyMismatch,
		Detail: fmt.Sprintf("key %v is not present in every mapping", key),
		Value:  key,
	}
}

// DuplicateKey creates an overwrite error for write-once mappings
func DuplicateKey(key any) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDuplicateKey,
		Detail: fmt.Sprintf("try to overwrite existing key: %v", key),
		Value:  key,
	}
}

// InvalidSize creates a size parse error
func InvalidSize(size string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidSize,
		Detail: fmt.Sprintf("size %q is not in a valid format, use an integer followed by a unit like '5GB'", size),
		Value:  size,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, goType, want string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		GoType: goType,
		Detail: fmt.Sprintf("expected %s", want),
	}
}
