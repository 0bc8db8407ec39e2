package clockify

import (
	"errors"
	"fmt"
)

// ErrCredentialMissing is returned before any network call when no API key
// is configured.
var ErrCredentialMissing = errors.New("clockify: missing API key")

// RequestError reports a non-success HTTP status from the Clockify API.
type RequestError struct {
	Status int
	Body   string // response body excerpt
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("clockify: unexpected status %d: %s", e.Status, e.Body)
}

// ProtocolError reports a response body that could not be decoded as the
// expected JSON structure.
type ProtocolError struct {
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("clockify: unable to parse response: %v", e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }
