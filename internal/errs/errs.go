// Package errs implements the Smile error taxonomy: errors surfaced as
// user-objects carrying a kind symbol, a message, and an optional
// synthesized stack trace.
package errs

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Kind names one of the fixed error-taxonomy entries.
type Kind string

const (
	CompileError           Kind = "compile-error"
	ConfigurationError     Kind = "configuration-error"
	EvalError              Kind = "eval-error"
	ExecError              Kind = "exec-error"
	JSONError              Kind = "json-error"
	LexerError             Kind = "lexer-error"
	LoadError              Kind = "load-error"
	NativeMethodError      Kind = "native-method-error"
	ObjectSecurityError    Kind = "object-security-error"
	PostConditionAssertion Kind = "post-condition-assertion"
	PreConditionAssertion  Kind = "pre-condition-assertion"
	PropertyError          Kind = "property-error"
	SyntaxError            Kind = "syntax-error"
	SystemException        Kind = "system-exception"
	TypeAssertion          Kind = "type-assertion"
	UserException          Kind = "user-exception"
)

// Frame is one entry in a synthesized stack trace: filename/line/column/
// byte-offset derived from a segment's source-location table.
type Frame struct {
	File   string
	Line   int
	Column int
	Offset int
}

// SmileError is the error object attached to the escape continuation when
// a throw occurs.
type SmileError struct {
	SmileKind Kind
	Message   string
	Stack     []Frame
	cause     error // wrapped internal Go error, if any, via github.com/pkg/errors
}

func New(kind Kind, message string) *SmileError {
	return &SmileError{SmileKind: kind, Message: message}
}

// Wrap converts an internal Go error into a SmileError of the given kind,
// preserving the original error's stack via github.com/pkg/errors so
// diagnostics retain the Go-level failure site in addition to the
// synthesized Smile stack trace attached later by the VM.
func Wrap(kind Kind, cause error, context string) *SmileError {
	wrapped := errors.Wrap(cause, context)
	return &SmileError{SmileKind: kind, Message: wrapped.Error(), cause: wrapped}
}

func (e *SmileError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", e.SmileKind, e.Message))
	for _, f := range e.Stack {
		sb.WriteString(fmt.Sprintf("\n  at %s:%d:%d", f.File, f.Line, f.Column))
	}
	return sb.String()
}

// Unwrap exposes the wrapped Go cause, if any, to errors.Is/As.
func (e *SmileError) Unwrap() error { return e.cause }

// WithStack attaches a synthesized call-stack trace.
func (e *SmileError) WithStack(stack []Frame) *SmileError {
	e.Stack = stack
	return e
}

// AddFrame appends one frame (outermost call last, matching the order
// frames are synthesized during unwind).
func (e *SmileError) AddFrame(f Frame) *SmileError {
	e.Stack = append(e.Stack, f)
	return e
}

// Divf builds a native-method-error for division by a zero divisor.
func Divf(op string) *SmileError {
	return New(NativeMethodError, fmt.Sprintf("Divide by zero in %q", op))
}

// ArgCheckFailure builds a native-method-error describing an argument-check
// mismatch, naming the offending position.
func ArgCheckFailure(fn string, position int, want, got string) *SmileError {
	return New(NativeMethodError, fmt.Sprintf(
		"%s: argument %d expected %s but got %s", fn, position, want, got))
}
