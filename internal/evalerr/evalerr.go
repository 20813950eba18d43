// Package evalerr defines the evaluator's error taxonomy: every failure
// mode the evaluator can produce, each carrying the span it occurred at,
// grounded on the interpreter's own Category/Message error shape.
package evalerr

import (
	"fmt"

	"github.com/cwbudde/quill/internal/value"
)

// Kind discriminates the taxonomy entries from spec §7.
type Kind string

const (
	UnknownOperator              Kind = "UnknownOperator"
	TypeMismatch                 Kind = "TypeMismatch"
	CantConvert                  Kind = "CantConvert"
	VariableNotFound             Kind = "VariableNotFound"
	AssignmentRequiresMutableVar Kind = "AssignmentRequiresMutableVar"
	AssignmentRequiresVar        Kind = "AssignmentRequiresVar"
	ExternalNotSupported         Kind = "ExternalNotSupported"
	CommandNotFound              Kind = "CommandNotFound"
	RecursionLimitReached        Kind = "RecursionLimitReached"
	GenericError                 Kind = "GenericError"
)

// EvalError is the evaluator's single error type; Kind selects which
// taxonomy entry it represents. It is never used to carry a Return — see
// ReturnSignal for that.
type EvalError struct {
	Kind    Kind
	Span    value.Span
	Title   string
	Label   string
	Help    string
	Inner   []error
	wrapped error
}

func (e *EvalError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Label)
	}
	return e.Title
}

func (e *EvalError) Unwrap() error { return e.wrapped }

func New(kind Kind, span value.Span, title string) *EvalError {
	return &EvalError{Kind: kind, Span: span, Title: title}
}

func Newf(kind Kind, span value.Span, format string, args ...any) *EvalError {
	return &EvalError{Kind: kind, Span: span, Title: fmt.Sprintf(format, args...)}
}

// Wrap attaches taxonomy context to an arbitrary underlying error, most
// often one bubbled up from the value-algebra package.
func Wrap(kind Kind, span value.Span, err error) *EvalError {
	return &EvalError{Kind: kind, Span: span, Title: err.Error(), wrapped: err}
}

func UnknownOp(span value.Span, op string) *EvalError {
	return Newf(UnknownOperator, span, "unknown operator %q", op)
}

func TypeMismatchf(span value.Span, format string, args ...any) *EvalError {
	return Newf(TypeMismatch, span, format, args...)
}

func CantConvertf(span value.Span, from, to string) *EvalError {
	return Newf(CantConvert, span, "can't convert %s to %s", from, to)
}

func VarNotFound(span value.Span, name string) *EvalError {
	return Newf(VariableNotFound, span, "variable not found: %s", name)
}

func RequiresMutableVar(span value.Span) *EvalError {
	return New(AssignmentRequiresMutableVar, span, "assignment requires mutable var")
}

func RequiresVar(span value.Span) *EvalError {
	return New(AssignmentRequiresVar, span, "assignment requires var")
}

func ExternalUnsupported(span value.Span) *EvalError {
	return New(ExternalNotSupported, span, "external commands are not supported")
}

func CmdNotFound(span value.Span, name string) *EvalError {
	return Newf(CommandNotFound, span, "command not found: %s", name)
}

// RecursionLimit matches spec §7/§8: the limit is 50 and the counter must
// already have been reset to zero by the caller before this is raised.
func RecursionLimit(span value.Span, limit int) *EvalError {
	return Newf(RecursionLimitReached, span, "recursion limit (%d) reached", limit)
}

// Generic builds a GenericError carrying an optional help string and inner
// causes, used for things like the unit-overflow "duration too large".
func Generic(span value.Span, title, label, help string, inner ...error) *EvalError {
	return &EvalError{Kind: GenericError, Span: span, Title: title, Label: label, Help: help, Inner: inner}
}

// ReturnSignal is not a true error: it unwinds the stack to the nearest
// eval.EvalBlockWithEarlyReturn call, carrying the value `return` produced.
// It implements error only so it can travel the same Go error-return path;
// callers must check for it with errors.As before treating a failure as
// real.
type ReturnSignal struct {
	Span  value.Span
	Value value.Value
}

func (r *ReturnSignal) Error() string { return "return" }
