// Package generation is the single seam through which non-determinism enters
// the planning pipeline: a text-generation backend invoked with a prompt and a
// declared output schema. Callers receive either a schema-conformant decoded
// value or a typed failure; they must still apply their own semantic
// validation, because schema-valid output can be semantically wrong.
package generation

import (
	"context"
	"errors"
	"fmt"
)

// FailureKind classifies why a generation call produced no usable output.
type FailureKind string

const (
	// NoStructuredOutput means the backend answered but the payload was
	// empty or did not conform to the declared schema.
	NoStructuredOutput FailureKind = "no_structured_output"
	// TransportError covers connection and protocol failures.
	TransportError FailureKind = "transport_error"
	// Timeout means the per-call budget elapsed.
	Timeout FailureKind = "timeout"
)

// Error is the typed failure surfaced by a Client.
type Error struct {
	Kind    FailureKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("generation %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a generation Error of the given kind.
func IsKind(err error, kind FailureKind) bool {
	var ge *Error
	return errors.As(err, &ge) && ge.Kind == kind
}

// failf builds a typed failure.
func failf(kind FailureKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Client invokes the generation backend. Generate decodes the structured
// response into out after validating it against schema; any schema violation
// is rejected here, never coerced.
type Client interface {
	Generate(ctx context.Context, prompt string, schema *Schema, out any) error
}
