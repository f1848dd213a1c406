// Package simerr defines the failure kinds reported by an evaluation.
//
// Every failure returned by the evaluation pipeline is an *Error whose Kind is
// one of the sentinel values below, so callers can branch with errors.Is and
// recover the offending line or component with errors.As.
package simerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInputUnavailable indicates the netlist source could not be read.
	ErrInputUnavailable = errors.New("input unavailable")

	// ErrMalformedNetlist indicates a broken .circuit/.end bracket, a short
	// line, an unknown component type or a bad dc clause.
	ErrMalformedNetlist = errors.New("malformed netlist")

	// ErrInvalidComponentValue indicates a negative resistance or a value
	// that is not a finite number.
	ErrInvalidComponentValue = errors.New("invalid component value")

	// ErrDisconnectedCircuit indicates that part of the network has no
	// resistive path into the rest of the circuit.
	ErrDisconnectedCircuit = errors.New("disconnected circuit")

	// ErrUnsolvableSystem indicates the assembled linear system is singular.
	ErrUnsolvableSystem = errors.New("unsolvable system")
)

// Error wraps a failure kind with the netlist context it was detected in.
type Error struct {
	Kind      error
	Line      int    // 1-based netlist line, 0 when not tied to a line
	Text      string // offending line, comment stripped
	Component string
	Groups    [][]string // node groups without a resistive path to ground
	Err       error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Line > 0 {
		fmt.Fprintf(&sb, " at line %d", e.Line)
	}
	if e.Text != "" {
		fmt.Fprintf(&sb, " %q", e.Text)
	}
	if e.Component != "" {
		fmt.Fprintf(&sb, " (component %s)", e.Component)
	}
	if len(e.Groups) > 0 {
		groups := make([]string, len(e.Groups))
		for i, g := range e.Groups {
			groups[i] = "{" + strings.Join(g, " ") + "}"
		}
		fmt.Fprintf(&sb, " floating nodes %s", strings.Join(groups, " "))
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New returns an *Error of the given kind with a formatted cause.
func New(kind error, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// Wrap returns an *Error of the given kind around err.
func Wrap(kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// AtLine attaches netlist line context and returns e.
func (e *Error) AtLine(line int, text string) *Error {
	e.Line = line
	e.Text = text
	return e
}

// For attaches a component name and returns e.
func (e *Error) For(component string) *Error {
	e.Component = component
	return e
}
