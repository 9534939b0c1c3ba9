// Package httpclient wraps net/http with a scoped client that owns its
// transport and classifies failures.
//
// A failure to build a request is a *RequestError, a failed exchange is a
// *TransportError and an unexpected status is a *StatusError. Callers release
// the client with Close when the run is over.
package httpclient
