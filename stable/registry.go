package stable

import (
	"math/big"
	"reflect"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
)

// EncoderFunc encodes one value of a registered type. It receives the
// serializer driving the current pass and the value to encode, and usually
// emits a reduction recipe via Serializer.Reduce.
type EncoderFunc func(s *Serializer, v reflect.Value) error

// Registry maps runtime types to custom encoders. It is consulted before
// every structural encoding rule. At most one encoder is held per type;
// later registrations replace earlier ones silently.
type Registry struct {
	mu       sync.RWMutex
	encoders map[reflect.Type]EncoderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		encoders: make(map[reflect.Type]EncoderFunc),
	}
}

// Register associates an encoder with a runtime type, replacing any
// previously registered encoder for the same type.
func (r *Registry) Register(t reflect.Type, fn EncoderFunc) {
	r.mu.Lock()
	r.encoders[t] = fn
	r.mu.Unlock()
	Logger().Debug("registered encoder", zap.String("type", t.String()))
}

// Lookup returns the encoder registered for the exact runtime type, if any.
func (r *Registry) Lookup(t reflect.Type) (EncoderFunc, bool) {
	r.mu.RLock()
	fn, ok := r.encoders[t]
	r.mu.RUnlock()
	return fn, ok
}

// Len returns the number of registered encoders.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.encoders)
}

// DefaultRegistry is the process-wide registry used by Serialize, Dump and
// Digest. It is populated during package initialization and never torn down.
var DefaultRegistry = NewRegistry()

// RegisterEncoder registers an encoder on the process-wide registry.
func RegisterEncoder(t reflect.Type, fn EncoderFunc) {
	DefaultRegistry.Register(t, fn)
}

func init() {
	// Compiled patterns reduce to their source text. The pattern fully
	// determines the compiled program, so internal matcher state never
	// reaches the byte stream.
	RegisterEncoder(reflect.TypeOf((*regexp.Regexp)(nil)), func(s *Serializer, v reflect.Value) error {
		re := v.Interface().(*regexp.Regexp)
		return s.Reduce("regexp.MustCompile", re.String())
	})

	// Timestamps reduce to UTC seconds + nanoseconds. The monotonic clock
	// reading and the location pointer are run-specific.
	RegisterEncoder(reflect.TypeOf(time.Time{}), func(s *Serializer, v reflect.Value) error {
		t := v.Interface().(time.Time).UTC()
		return s.Reduce("time.Unix", t.Unix(), int64(t.Nanosecond()))
	})

	// Big integers reduce to their decimal text.
	RegisterEncoder(reflect.TypeOf((*big.Int)(nil)), func(s *Serializer, v reflect.Value) error {
		n := v.Interface().(*big.Int)
		return s.Reduce("big.NewIntString", n.String())
	})
}
