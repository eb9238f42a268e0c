// Package errors provides the typed failure model for binding and
// evaluation. Every fallible operation returns an *ExpressionError so
// callers can branch on the failure kind instead of parsing messages.
package errors

import (
	"fmt"
)

// Kind classifies an expression failure.
type Kind int

const (
	// KindAttributeTypeMismatch: a child resolved to a type the
	// operator does not accept.
	KindAttributeTypeMismatch Kind = iota
	// KindAttributeMissing: schema lookup failed during binding.
	KindAttributeMissing
	// KindAllocationFailure: the allocator could not satisfy a buffer
	// request at the negotiated capacity.
	KindAllocationFailure
	// KindPatternCompilation: a malformed pattern was supplied to a
	// stateful expression at construction time.
	KindPatternCompilation
	// KindEvaluation: a kernel-level failure during Evaluate.
	KindEvaluation
	// KindInvalidArgument: structurally invalid input to a builder or
	// binder entry point.
	KindInvalidArgument
)

func (k Kind) String() string {
	switch k {
	case KindAttributeTypeMismatch:
		return "attribute type mismatch"
	case KindAttributeMissing:
		return "attribute missing"
	case KindAllocationFailure:
		return "allocation failure"
	case KindPatternCompilation:
		return "pattern compilation"
	case KindEvaluation:
		return "evaluation"
	case KindInvalidArgument:
		return "invalid argument"
	default:
		return "unknown"
	}
}

// ExpressionError is the standardized error for all expression
// operations. Op is the textual form of the offending expression node
// or the operation name.
type ExpressionError struct {
	Kind    Kind
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ExpressionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s in %s: %s", e.Kind, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for error wrapping support.
func (e *ExpressionError) Unwrap() error {
	return e.Cause
}

// Is implements error equality checking for errors.Is().
func (e *ExpressionError) Is(target error) bool {
	if other, ok := target.(*ExpressionError); ok {
		return e.Kind == other.Kind && e.Op == other.Op && e.Message == other.Message
	}
	return false
}

// KindOf returns the Kind of err if it is an *ExpressionError.
func KindOf(err error) (Kind, bool) {
	if ee, ok := err.(*ExpressionError); ok {
		return ee.Kind, true
	}
	return 0, false
}

// Common error constructors for consistent error creation.

// NewTypeMismatchError reports a child whose resolved type disagrees
// with the operator's requirement. op is the offending node's textual
// form; position names the argument when the operator has several.
func NewTypeMismatchError(op, actual, expected, position string) *ExpressionError {
	msg := fmt.Sprintf("invalid argument type (%s), %s expected", actual, expected)
	if position != "" {
		msg = fmt.Sprintf("invalid argument type (%s) as %s argument, %s expected", actual, position, expected)
	}
	return &ExpressionError{
		Kind:    KindAttributeTypeMismatch,
		Op:      op,
		Message: msg,
	}
}

// NewAttributeMissingError reports a failed schema lookup.
func NewAttributeMissingError(op, name string) *ExpressionError {
	return &ExpressionError{
		Kind:    KindAttributeMissing,
		Op:      op,
		Message: fmt.Sprintf("attribute %q not present in the input schema", name),
	}
}

// NewAllocationError reports an output buffer the allocator refused.
func NewAllocationError(op string, cause error) *ExpressionError {
	return &ExpressionError{
		Kind:    KindAllocationFailure,
		Op:      op,
		Message: "could not allocate the output column",
		Cause:   cause,
	}
}

// NewPatternError reports a pattern that failed to compile.
func NewPatternError(op, pattern string, cause error) *ExpressionError {
	return &ExpressionError{
		Kind:    KindPatternCompilation,
		Op:      op,
		Message: fmt.Sprintf("malformed pattern %q", pattern),
		Cause:   cause,
	}
}

// NewEvaluationError reports a kernel-level failure for a batch.
func NewEvaluationError(op, message string, cause error) *ExpressionError {
	return &ExpressionError{
		Kind:    KindEvaluation,
		Op:      op,
		Message: message,
		Cause:   cause,
	}
}

// NewInvalidArgumentError reports structurally invalid input.
func NewInvalidArgumentError(op, message string) *ExpressionError {
	return &ExpressionError{
		Kind:    KindInvalidArgument,
		Op:      op,
		Message: message,
	}
}
