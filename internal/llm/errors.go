package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies gateway failures so the HTTP layer and callers can
// map them to user-facing messages without string matching.
type ErrorKind string

const (
	// KindCredentialMissing means no usable secret is configured for a vendor.
	KindCredentialMissing ErrorKind = "credential_missing"
	// KindEndpointUnresolved means no usable base URL exists for the selected tier.
	KindEndpointUnresolved ErrorKind = "endpoint_unresolved"
	// KindRequestBuildFailed means the normalized request cannot be mapped
	// into the wire dialect, e.g. a required field is absent.
	KindRequestBuildFailed ErrorKind = "request_build_failed"
	// KindTransportFailed is a network or connection error.
	KindTransportFailed ErrorKind = "transport_failed"
	// KindUpstreamError is a non-success status from the vendor.
	KindUpstreamError ErrorKind = "upstream_error"
	// KindResponseParseFailed means the vendor payload had an unexpected shape.
	KindResponseParseFailed ErrorKind = "response_parse_failed"
	// KindStreamProtocolError is an in-band error event surfaced mid-stream.
	KindStreamProtocolError ErrorKind = "stream_protocol_error"
)

// Error is a vendor-attributed gateway error. Status and Body are populated
// for upstream failures so callers can log raw diagnostics.
type Error struct {
	Kind     ErrorKind
	Provider string
	Message  string

	Status int
	Body   []byte

	Err error
}

func (e *Error) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches against sentinel errors carrying only a Kind, so callers can do
// errors.Is(err, &llm.Error{Kind: llm.KindCredentialMissing}).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind && (t.Provider == "" || t.Provider == e.Provider)
}

// IsKind reports whether err is a gateway error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func newError(kind ErrorKind, provider, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Provider: provider, Message: fmt.Sprintf(format, args...)}
}

func CredentialMissingError(provider, keyName string) *Error {
	return newError(KindCredentialMissing, provider, "API key %q is not configured", keyName)
}

func EndpointUnresolvedError(provider string) *Error {
	return newError(KindEndpointUnresolved, provider, "no usable base URL configured")
}

func RequestBuildError(provider, format string, args ...interface{}) *Error {
	return newError(KindRequestBuildFailed, provider, format, args...)
}

func TransportError(provider string, err error) *Error {
	e := newError(KindTransportFailed, provider, "request failed: %v", err)
	e.Err = err
	return e
}

func UpstreamStatusError(provider string, status int, body []byte) *Error {
	e := newError(KindUpstreamError, provider, "upstream returned status %d", status)
	e.Status = status
	e.Body = body
	return e
}

func StreamProtocolError(provider string, err error) *Error {
	e := newError(KindStreamProtocolError, provider, "stream protocol violation: %v", err)
	e.Err = err
	return e
}

func ResponseParseError(provider string, err error) *Error {
	e := newError(KindResponseParseFailed, provider, "unexpected response shape: %v", err)
	e.Err = err
	return e
}
