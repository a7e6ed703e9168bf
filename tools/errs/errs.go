// Package errs carries the coded errors the gateway reports back over the
// event channel. Code values double as the machine-readable reason strings
// on the wire, so handlers can surface a denial without inventing ad hoc
// messages at each call site.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Reason codes emitted in error events.
const (
	ReasonUnauthenticated  = "unauthenticated"
	ReasonAccessDenied     = "access_denied"
	ReasonMissingParameter = "missing_parameter"
)

type CodeError struct {
	Code   string `json:"code"`
	Msg    string `json:"msg"`
	Detail string `json:"detail,omitempty"`
}

var (
	ErrUnauthenticated  = &CodeError{Code: ReasonUnauthenticated, Msg: "invalid or missing credential"}
	ErrAccessDenied     = &CodeError{Code: ReasonAccessDenied, Msg: "access denied to project"}
	ErrMissingParameter = &CodeError{Code: ReasonMissingParameter, Msg: "required parameter missing"}
)

func NewCodeError(code, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func (e *CodeError) Error() string {
	if e.Detail != "" {
		return e.Code + " " + e.Msg + " " + e.Detail
	}
	return e.Code + " " + e.Msg
}

// WithDetail returns a copy carrying extra context; the receiver is shared
// between goroutines and must not be mutated.
func (e *CodeError) WithDetail(detail string) *CodeError {
	d := detail
	if e.Detail != "" {
		d = e.Detail + ", " + detail
	}
	return &CodeError{Code: e.Code, Msg: e.Msg, Detail: d}
}

func (e *CodeError) Is(err error) bool {
	other, ok := err.(*CodeError)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// AsCode unwraps err down to a *CodeError if one is in the chain.
func AsCode(err error) (*CodeError, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// Wrap attaches a stack trace once; wrapping nil stays nil.
func Wrap(err error) error {
	return errors.WithStack(err)
}

// WrapMsg annotates and attaches a stack trace.
func WrapMsg(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.WithStack(errors.WithMessage(err, fmt.Sprintf(format, args...)))
}

// New builds a plain stack-carrying error.
func New(msg string) error {
	return errors.New(msg)
}
