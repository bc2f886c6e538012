package lookup

import (
	"errors"
	"fmt"

	"namewatch/internal/domain"
)

// FailureKind is the normalized taxonomy for registry lookup failures. A
// failed lookup is always distinct from a successful "no such record"
// response, which is a valid outcome.
type FailureKind string

const (
	// FailureTimeout means the registry did not answer within the deadline.
	FailureTimeout FailureKind = "timeout"

	// FailureTransport means the lookup could not be completed at all
	// (connection refused, DNS failure on the whois host, etc).
	FailureTransport FailureKind = "transport"

	// FailureUnparsable means the registry answered but the payload could
	// not be turned into a record.
	FailureUnparsable FailureKind = "unparsable"
)

// Error wraps a lookup failure with its kind so callers can classify without
// string matching. Timeout and transport failures are retryable on the next
// due cycle; unparsable payloads are not until the parser learns the format.
type Error struct {
	Kind       FailureKind
	Domain     domain.NormalizedDomain
	Message    string
	Underlying error
}

func (e *Error) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("lookup %s [%s]: %s: %v", e.Domain, e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("lookup %s [%s]: %s", e.Domain, e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Underlying }

// Retryable reports whether retrying the lookup later could succeed.
func (e *Error) Retryable() bool {
	return e.Kind == FailureTimeout || e.Kind == FailureTransport
}

func newError(kind FailureKind, d domain.NormalizedDomain, message string, underlying error) *Error {
	return &Error{Kind: kind, Domain: d, Message: message, Underlying: underlying}
}

// KindOf extracts the failure kind from an error chain. Unrecognized errors
// report as transport failures.
func KindOf(err error) FailureKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return FailureTransport
}

// IsRetryable reports whether an error from Resolve is worth retrying.
func IsRetryable(err error) bool {
	var le *Error
	if errors.As(err, &le) {
		return le.Retryable()
	}
	return false
}
