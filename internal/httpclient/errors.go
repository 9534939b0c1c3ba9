package httpclient

import (
	"errors"
	"fmt"
)

// ErrBadHTTPStatus is matched by every *StatusError.
var ErrBadHTTPStatus = errors.New("unexpected http status")

// RequestError reports that a request could not be started at all.
type RequestError struct {
	// URL is the address the request was meant for.
	URL string
	// Err is the underlying construction failure.
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("unable to start request to %s: %v", e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// TransportError reports that the exchange started but the transport failed,
// either before the response arrived or while its body was being read.
type TransportError struct {
	// URL is the requested address.
	URL string
	// Err is the transport failure (DNS, connect, TLS, protocol, short body).
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transfer from %s failed: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a completed exchange with a non-2xx status.
type StatusError struct {
	// URL is the requested address.
	URL string
	// Status is the status line, e.g. "404 Not Found".
	Status string
	// StatusCode is the numeric status.
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s, %s: %v", e.URL, e.Status, ErrBadHTTPStatus)
}

// Is lets errors.Is(err, ErrBadHTTPStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrBadHTTPStatus
}

// IsRequestError reports whether err was caused by a request that never started.
func IsRequestError(err error) bool {
	var reqErr *RequestError
	return errors.As(err, &reqErr)
}

// IsTransportError reports whether err was caused by a failed transfer.
func IsTransportError(err error) bool {
	var trErr *TransportError
	return errors.As(err, &trErr)
}
