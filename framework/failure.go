package framework

import (
	"errors"
	"fmt"
)

// FailureKind classifies why a test failed.
type FailureKind int

const (
	// AssertionFailure means the service answered, but not with what the test expected.
	AssertionFailure FailureKind = iota

	// TransportFailure means a request could not be completed at all: connection refused,
	// timeout, or a response that could not be read or decoded.
	TransportFailure

	// PreconditionFailure means a setup step, such as logging in as a particular role,
	// failed before the test could perform the action it is really about.
	PreconditionFailure

	// PanicFailure means the test logic itself panicked.
	PanicFailure
)

func (k FailureKind) String() string {
	switch k {
	case AssertionFailure:
		return "assertion"
	case TransportFailure:
		return "transport"
	case PreconditionFailure:
		return "precondition"
	case PanicFailure:
		return "panic"
	default:
		return fmt.Sprintf("FailureKind(%d)", int(k))
	}
}

// TestError is the error type recorded for every test failure.
type TestError struct {
	Kind FailureKind
	Err  error
}

func (e *TestError) Error() string {
	return e.Err.Error()
}

func (e *TestError) Unwrap() error {
	return e.Err
}

// KindOf returns the FailureKind of an error recorded by a Context. Errors that did not
// come from a Context are treated as assertion failures.
func KindOf(err error) FailureKind {
	var te *TestError
	if errors.As(err, &te) {
		return te.Kind
	}
	return AssertionFailure
}
