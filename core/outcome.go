package core

import (
	"errors"

	"github.com/jdelaire/ares/core/ops"
)

// ErrorKind classifies a failed dispatch.
type ErrorKind int

const (
	KindNone         ErrorKind = iota
	KindArity                  // insufficient or excess arguments
	KindComputation            // handler failed on its own (division by zero, panic)
	KindCollaborator           // the stats service failed
	KindDelivery               // the reply could not be sent
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "ok"
	case KindArity:
		return "arity"
	case KindComputation:
		return "computation"
	case KindCollaborator:
		return "collaborator"
	case KindDelivery:
		return "delivery"
	default:
		return "unknown"
	}
}

// Outcome is the result of dispatching one message.
type Outcome struct {
	// Command is the resolved command name, empty if nothing was dispatched.
	Command string
	// Handled is false for non-commands and unknown commands.
	Handled bool
	// Replied is true once a reply was delivered.
	Replied bool
	Kind    ErrorKind
	Err     error
}

// OK reports whether the dispatch completed without failure.
func (o Outcome) OK() bool { return o.Kind == KindNone }

func classify(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ops.ErrArity):
		return KindArity
	case errors.Is(err, ops.ErrCollaborator):
		return KindCollaborator
	default:
		return KindComputation
	}
}
