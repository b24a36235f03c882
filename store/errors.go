package store

import (
	"errors"
	"fmt"
)

// Kind classifies store failures.
type Kind int

const (
	// KindValidation marks rejected input; the store is unchanged.
	KindValidation Kind = iota + 1
	// KindConfig marks an unusable storage location.
	KindConfig
	// KindPersist marks a failed write to the backend.
	KindPersist
	// KindLoad marks persisted state that could not be read back.
	KindLoad
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConfig:
		return "config"
	case KindPersist:
		return "persist"
	case KindLoad:
		return "load"
	default:
		return "unknown"
	}
}

// Validation errors specific to the store. Embedding checks use the vector
// package sentinels (vector.ErrDimensionMismatch, vector.ErrZeroNorm, ...).
var (
	ErrInvalidTopK  = errors.New("store: top_k must be positive")
	ErrEmptyVideoID = errors.New("store: empty video_id")
)

// Error wraps a failure with the operation and its kind.
type Error struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("store.%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a store error.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// IsValidation reports whether err is a rejected-input error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }
