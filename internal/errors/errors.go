// internal/errors/errors.go
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind tags the seven error categories the language distinguishes.
type Kind string

const (
	LinkerError     Kind = "LinkerError"
	PrototypeError  Kind = "PrototypeError"
	ConversionError Kind = "ConversionError"
	TypeError       Kind = "TypeError"
	DivisionByZero  Kind = "DivisionByZero"
	MathError       Kind = "MathError"
	RuntimeError    Kind = "RuntimeError"
)

// AscensionError is the single error value raised by the compiler and VM:
// a message plus a kind tag, with an optional instruction pointer stamped
// on by the VM when the error surfaces during execution.
type AscensionError struct {
	Kind    Kind
	Message string
	IP      int
	cause   error
}

func (e *AscensionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AscensionError) Unwrap() error { return e.cause }

func New(kind Kind, format string, args ...interface{}) *AscensionError {
	return &AscensionError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a host-level Go error as a RuntimeError, keeping the
// original via errors.Wrap so %+v prints a stack trace in development.
func Wrap(err error, context string) *AscensionError {
	return &AscensionError{
		Kind:    RuntimeError,
		Message: context,
		cause:   errors.Wrap(err, context),
	}
}

// AtIP returns a copy of e stamped with the instruction pointer at which it
// surfaced, for the "Uncaught @ IP <n>: <message>" diagnostic.
func (e *AscensionError) AtIP(ip int) *AscensionError {
	cp := *e
	cp.IP = ip
	return &cp
}
