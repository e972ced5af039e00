package types

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes an engine failure so callers can decide whether to
// retry, penalize the submitter, or treat the lookup as absent.
type ErrorKind int

const (
	// KindNone marks success; EngineError is never constructed with it.
	KindNone ErrorKind = iota
	// KindNotFound marks a lookup that legitimately came up empty.
	KindNotFound
	// KindPermanentInvalid marks a cryptographic, structural, balance, or
	// consensus violation. The item must never be retried.
	KindPermanentInvalid
	// KindTransientInvalid marks a duplicate, mempool conflict, or orphan
	// (no parent yet). Callers may resubmit later.
	KindTransientInvalid
	// KindStorageFailure marks a backend failure; the caller's storage
	// transaction has already been (or must be) discarded.
	KindStorageFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindPermanentInvalid:
		return "permanent_invalid"
	case KindTransientInvalid:
		return "transient_invalid"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "none"
	}
}

// EngineError wraps an underlying cause with a classification, letting
// callers use errors.Is/errors.As on ErrNotFound while still logging the
// original cause.
type EngineError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, types.ErrNotFound) succeed for any KindNotFound
// EngineError, regardless of the wrapped cause.
func (e *EngineError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// Permanent reports whether the error represents a definitive rejection
// (true) versus a retryable one (false). Storage failures and not-found are
// not part of the submit/permanent protocol and return false.
func (e *EngineError) Permanent() bool {
	return e.Kind == KindPermanentInvalid
}

// NewNotFound builds a not-found EngineError.
func NewNotFound(msg string) error {
	return &EngineError{Kind: KindNotFound, Msg: msg}
}

// NewPermanent builds a permanent-invalid EngineError.
func NewPermanent(msg string, cause error) error {
	return &EngineError{Kind: KindPermanentInvalid, Msg: msg, Err: cause}
}

// NewTransient builds a transient-invalid EngineError.
func NewTransient(msg string, cause error) error {
	return &EngineError{Kind: KindTransientInvalid, Msg: msg, Err: cause}
}

// NewStorageFailure builds a storage-failure EngineError.
func NewStorageFailure(msg string, cause error) error {
	return &EngineError{Kind: KindStorageFailure, Msg: msg, Err: cause}
}

// ErrNotFound is a sentinel usable with errors.Is against any EngineError
// of KindNotFound, through EngineError's Is method; IsNotFound below is
// the equivalent helper.
var ErrNotFound = errors.New("not found")

// IsNotFound reports whether err is (or wraps) a KindNotFound EngineError.
func IsNotFound(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind == KindNotFound
	}
	return false
}

// IsPermanent reports whether err is (or wraps) a KindPermanentInvalid
// EngineError.
func IsPermanent(err error) bool {
	var ee *EngineError
	if errors.As(err, &ee) {
		return ee.Kind == KindPermanentInvalid
	}
	return false
}
