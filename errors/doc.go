// Package errors provides structured error types for the datakit library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: field path, Go type name,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseEncode, errors.KindUnsupportedType).
//		Path("config", "callback").
//		GoType("chan int").
//		Detail("channels cannot be serialized").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnsupportedType(errors.PhaseEncode, path, "chan int")
//	err := errors.ChunkMismatch(100, 99)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
