package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound    = errors.New("review not found")
	ErrRatingRange = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
)

// ErrorKind classifies persistence failures. The HTTP layer renders most kinds
// as a generic 500 but logs the kind.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindConflict
	KindInvalid
	KindUnavailable
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalid:
		return "invalid"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// StoreError wraps a driver error with the gateway operation that produced it.
type StoreError struct {
	Op   string
	Kind ErrorKind
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("store %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("store %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrNotFound) hold for not-found store errors.
func (e *StoreError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

func NewStoreError(op string, kind ErrorKind, err error) error {
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// KindOf returns the kind of err, KindInternal for errors that are not store errors.
func KindOf(err error) ErrorKind {
	var se *StoreError
	if errors.As(err, &se) {
		return se.Kind
	}
	if errors.Is(err, ErrNotFound) {
		return KindNotFound
	}
	return KindInternal
}
