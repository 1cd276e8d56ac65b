package ops

import (
	"errors"
	"fmt"
)

var (
	// ErrArity reports that a command was invoked with too few or too many arguments.
	ErrArity = errors.New("wrong number of arguments")
	// ErrDivideByZero reports a ratio computed over a zero denominator.
	ErrDivideByZero = errors.New("division by zero")
	// ErrCollaborator wraps failures returned by the stats collaborator.
	ErrCollaborator = errors.New("stats collaborator failed")
)

// Arity declares how many positional arguments an op accepts.
// A negative Max means no upper bound.
type Arity struct {
	Min int
	Max int
}

// AnyArgs accepts and ignores any number of arguments.
var AnyArgs = Arity{Min: 0, Max: -1}

// AtLeast accepts n or more arguments.
func AtLeast(n int) Arity { return Arity{Min: n, Max: -1} }

// Exactly accepts exactly n arguments.
func Exactly(n int) Arity { return Arity{Min: n, Max: n} }

// Accepts reports whether n arguments satisfy the arity.
func (a Arity) Accepts(n int) bool {
	if n < a.Min {
		return false
	}
	return a.Max < 0 || n <= a.Max
}

func (a Arity) String() string {
	switch {
	case a.Max < 0 && a.Min == 0:
		return "any"
	case a.Max < 0:
		return fmt.Sprintf("at least %d", a.Min)
	case a.Min == a.Max:
		return fmt.Sprintf("exactly %d", a.Min)
	default:
		return fmt.Sprintf("%d to %d", a.Min, a.Max)
	}
}

// ArityError describes a rejected invocation.
type ArityError struct {
	Command string
	Want    Arity
	Got     int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("/%s takes %s arguments, got %d", e.Command, e.Want, e.Got)
}

func (e *ArityError) Unwrap() error { return ErrArity }

// CheckArity returns an *ArityError when call does not satisfy op's arity.
func CheckArity(op Op, call Call) error {
	want := op.Arity()
	if want.Accepts(len(call.Args)) {
		return nil
	}
	return &ArityError{Command: op.Name(), Want: want, Got: len(call.Args)}
}

func collaboratorErr(err error) error {
	return fmt.Errorf("%w: %w", ErrCollaborator, err)
}
