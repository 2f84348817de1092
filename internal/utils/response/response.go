// Package response provides helpers for writing consistent console
// messages.
//
// Every operation in the console ends by telling the user what happened.
// Rather than formatting those lines ad hoc in each handler, we
// centralise them here so success and error output always look alike.
package response

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aanand-mishra/records/internal/input"
)

// Response is the outcome of one console operation.
type Response struct {
	Status  string // "ok" or "error"
	Message string // human-readable detail
}

// Status string constants. Use these instead of raw string literals so
// a typo is caught by the compiler.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Write prints the response message on its own line.
func Write(w io.Writer, r Response) error {
	_, err := fmt.Fprintln(w, r.Message)
	return err
}

// OK builds a success response from a format string.
func OK(format string, args ...any) Response {
	return Response{Status: StatusOK, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error response from a format string.
func Errorf(format string, args ...any) Response {
	return Response{Status: StatusError, Message: fmt.Sprintf(format, args...)}
}

// GeneralError wraps any Go error into our standard Response shape.
// Use this for unexpected errors (storage failures, parse errors, etc.)
func GeneralError(err error) Response {
	return Response{
		Status:  StatusError,
		Message: capitalize(err.Error()),
	}
}

// ValidationError converts per-field validator failures into a single
// human-readable Response.
//
// Example output:
//
//	Field name is required, field marks must be at most 100
func ValidationError(verr input.ValidationError) Response {
	var errMessages []string

	for _, fe := range verr {
		for _, e := range fe.Errs {
			switch e.ActualTag() {
			case "required":
				errMessages = append(errMessages,
					fmt.Sprintf("field %s is required", fe.Field))
			case "min", "gte":
				errMessages = append(errMessages,
					fmt.Sprintf("field %s must be at least %s", fe.Field, e.Param()))
			case "max", "lte":
				errMessages = append(errMessages,
					fmt.Sprintf("field %s must be at most %s", fe.Field, e.Param()))
			default:
				errMessages = append(errMessages,
					fmt.Sprintf("field %s is invalid", fe.Field))
			}
		}
	}

	return Response{
		Status:  StatusError,
		Message: capitalize(strings.Join(errMessages, ", ")),
	}
}

// capitalize upper-cases the first rune of s.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
