// Package classify maps transport results onto the tool's error taxonomy
// and attaches operator-facing remediation hints. Classification is a pure
// function of status code, provider, endpoint family, and error body; it
// never discards the raw evidence.
package classify

import "fmt"

// Category is the typed failure category.
type Category string

const (
	EmptyPrompt          Category = "empty_prompt"
	InvalidSelection     Category = "invalid_selection"
	DiscoveryUnavailable Category = "discovery_unavailable"
	AuthFailure          Category = "auth_failure"
	EntitlementFailure   Category = "entitlement_failure"
	MalformedRequest     Category = "malformed_request"
	QuotaOrRateLimit     Category = "quota_or_rate_limit"
	TransportFailure     Category = "transport_failure"
	ParseFailure         Category = "parse_failure"
	Unknown              Category = "unknown"
)

// Error is the terminal error type carried to the CLI. RawBody and
// ArtifactPath preserve the evidence for post-hoc inspection.
type Error struct {
	Category     Category
	HTTPStatus   int
	Message      string
	Remediation  string
	RawBody      []byte
	ArtifactPath string
	Cause        error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Category, e.HTTPStatus, msg)
	}
	return fmt.Sprintf("%s: %s", e.Category, msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a pipeline-level error with no HTTP status attached.
func New(cat Category, msg string) *Error {
	return &Error{Category: cat, Message: msg}
}

// Wrap builds a pipeline-level error around a cause.
func Wrap(cat Category, msg string, cause error) *Error {
	return &Error{Category: cat, Message: msg, Cause: cause}
}
