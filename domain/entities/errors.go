package entities

import (
	"errors"
	"fmt"
)

// Configuration and resolution failures raised while wiring a composite.
var (
	ErrAmbiguousLocator    = errors.New("more than one locator strategy set")
	ErrConflictingLocator  = errors.New("both literal and chained locators declared")
	ErrIllegalNesting      = errors.New("page object declared inside a composite")
	ErrListComponentType   = errors.New("list item type cannot be resolved")
	ErrListElementNotValid = errors.New("list item type has no handle constructor")
	ErrUnresolvedParent    = errors.New("parent root handle is not resolved")
	ErrEmptyLocator        = errors.New("no locator strategy set")
	ErrAlreadyParented     = errors.New("node already belongs to another composite")
	ErrNotWired            = errors.New("element has not been wired")
)

// Lookup failures reported as assertion failures.
var (
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrEmptyList       = errors.New("list is empty")
	ErrSizeMismatch    = errors.New("unexpected size")
)

// Driver and wait failures.
var (
	ErrElementNotFound     = errors.New("element not found")
	ErrUnsupportedStrategy = errors.New("selector strategy not supported here")
	ErrWaitExhausted       = errors.New("condition not met after retries")
)

// WiringErrorKind identifies the category of a wiring failure.
type WiringErrorKind int

const (
	KindUnknown WiringErrorKind = iota
	KindAmbiguousLocator
	KindConflictingLocator
	KindIllegalNesting
	KindListComponentType
	KindListElementNotValid
	KindUnresolvedParent
	KindEmptyLocator
	KindAlreadyParented
)

func (k WiringErrorKind) String() string {
	switch k {
	case KindAmbiguousLocator:
		return "ambiguous-locator"
	case KindConflictingLocator:
		return "conflicting-locator"
	case KindIllegalNesting:
		return "illegal-nesting"
	case KindListComponentType:
		return "list-component-type"
	case KindListElementNotValid:
		return "list-element-not-valid"
	case KindUnresolvedParent:
		return "unresolved-parent"
	case KindEmptyLocator:
		return "empty-locator"
	case KindAlreadyParented:
		return "already-parented"
	default:
		return "unknown"
	}
}

// WiringError is a fatal configuration or resolution error. Owner is the
// declaring composite type and Field the offending field.
type WiringError struct {
	Kind  WiringErrorKind
	Owner string
	Field string
	Err   error
}

func (e *WiringError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("wiring %s: %s: %v", e.Owner, e.Kind, e.Err)
	}
	return fmt.Sprintf("wiring %s.%s: %s: %v", e.Owner, e.Field, e.Kind, e.Err)
}

func (e *WiringError) Unwrap() error {
	return e.Err
}

// NewWiringError classifies err by the sentinel it wraps.
func NewWiringError(owner, field string, err error) *WiringError {
	var we *WiringError
	if errors.As(err, &we) {
		return we
	}
	return &WiringError{Kind: kindOf(err), Owner: owner, Field: field, Err: err}
}

func kindOf(err error) WiringErrorKind {
	switch {
	case errors.Is(err, ErrAmbiguousLocator):
		return KindAmbiguousLocator
	case errors.Is(err, ErrConflictingLocator):
		return KindConflictingLocator
	case errors.Is(err, ErrIllegalNesting):
		return KindIllegalNesting
	case errors.Is(err, ErrListComponentType):
		return KindListComponentType
	case errors.Is(err, ErrListElementNotValid):
		return KindListElementNotValid
	case errors.Is(err, ErrUnresolvedParent):
		return KindUnresolvedParent
	case errors.Is(err, ErrEmptyLocator):
		return KindEmptyLocator
	case errors.Is(err, ErrAlreadyParented):
		return KindAlreadyParented
	default:
		return KindUnknown
	}
}

// AssertionError is a lookup that did not find what the test expected.
type AssertionError struct {
	Container string
	Message   string
	Err       error
}

func (e *AssertionError) Error() string {
	return fmt.Sprintf("assertion failed on %q: %s", e.Container, e.Message)
}

func (e *AssertionError) Unwrap() error {
	return e.Err
}

// Assertf builds an AssertionError wrapping one of the lookup sentinels.
func Assertf(container string, err error, format string, args ...any) *AssertionError {
	return &AssertionError{Container: container, Message: fmt.Sprintf(format, args...), Err: err}
}
