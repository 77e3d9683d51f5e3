package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindUnsupportedType,
				Path:   []string{"config", "callback", "state"},
				GoType: "chan int",
				Detail: "cannot serialize",
			},
			contains: []string{"[encode]", "unsupported_type", "config.callback.state", "chan int", "cannot serialize"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseMap,
				Kind:  KindChunkMismatch,
			},
			contains: []string{"[map]", "chunk_mismatch"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseProbe,
				Kind:   KindNotFound,
				Detail: "statfs failed",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[probe]", "not_found", "statfs failed", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseEncode,
		Kind:  KindUnsupportedType,
		Path:  []string{"foo"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseEncode, Kind: KindUnsupportedType}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindUnsupportedType}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindOverflow}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseEncode, Kind: KindUnsupportedType}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseSnapshot, KindTypeMismatch).
		Path("fn", "vars").
		GoType("func()").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "func", "int").
		Build()

	if err.Phase != PhaseSnapshot {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseSnapshot)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "fn" || err.Path[1] != "vars" {
		t.Errorf("Path = %v, want [fn vars]", err.Path)
	}
	if err.GoType != "func()" {
		t.Errorf("GoType = %v, want 'func()'", err.GoType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected func, got int" {
		t.Errorf("Detail = %v, want 'expected func, got int'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("UnsupportedType", func(t *testing.T) {
		err := UnsupportedType(PhaseEncode, []string{"field"}, "chan int")
		if err.Kind != KindUnsupportedType {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupportedType)
		}
		if err.GoType != "chan int" {
			t.Errorf("GoType = %v, want 'chan int'", err.GoType)
		}
		if !strings.Contains(err.Detail, "chan int") {
			t.Errorf("Detail = %v, should name the type", err.Detail)
		}
	})

	t.Run("ChunkMismatch", func(t *testing.T) {
		err := ChunkMismatch(100, 99)
		if err.Kind != KindChunkMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindChunkMismatch)
		}
		if err.Phase != PhaseMap {
			t.Errorf("Phase = %v, want %v", err.Phase, PhaseMap)
		}
		if !strings.Contains(err.Detail, "100") || !strings.Contains(err.Detail, "99") {
			t.Errorf("Detail = %v, should contain both counts", err.Detail)
		}
	})

	t.Run("KeyMismatch", func(t *testing.T) {
		err := KeyMismatch("split")
		if err.Kind != KindKeyMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindKeyMismatch)
		}
		if err.Value != "split" {
			t.Errorf("Value = %v, want 'split'", err.Value)
		}
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		err := DuplicateKey("train")
		if err.Kind != KindDuplicateKey {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicateKey)
		}
	})

	t.Run("InvalidSize", func(t *testing.T) {
		err := InvalidSize("5XB")
		if err.Kind != KindInvalidSize {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidSize)
		}
		if !strings.Contains(err.Detail, "5XB") {
			t.Errorf("Detail = %v, should contain the input", err.Detail)
		}
	})

	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseDecode, []string{"field"}, "int", "string")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" {
			t.Errorf("GoType = %v, want 'int'", err.GoType)
		}
	})
}

func TestError_AsTarget(t *testing.T) {
	var target *Error
	err := UnsupportedType(PhaseEncode, nil, "uintptr")

	if !errors.As(err, &target) {
		t.Fatal("errors.As should extract *Error")
	}
	if target.GoType != "uintptr" {
		t.Errorf("GoType = %v, want 'uintptr'", target.GoType)
	}
}
