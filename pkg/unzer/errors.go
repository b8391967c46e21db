package unzer

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrTransport marks connection-level failures.
	ErrTransport = errors.New("unzer: transport error")
	// ErrParse marks responses whose body is not the expected JSON.
	ErrParse = errors.New("unzer: response parse error")
	// ErrInvalidArgument marks caller input the client cannot use.
	ErrInvalidArgument = errors.New("unzer: invalid argument")
)

// TransportError is returned when the request could not be completed.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("unzer: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports whether target is ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ParseError is returned when the response body could not be decoded.
// Body holds the raw bytes as received.
type ParseError struct {
	StatusCode int
	Body       []byte
	Err        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unzer: parse response (status %d): %v", e.StatusCode, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }

func invalidArgument(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

var errEmptyBody = errors.New("empty response body")
