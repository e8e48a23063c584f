package dradis

import "fmt"

// RequestError is returned when the Dradis API answers with a non-2xx
// status. Body holds the decoded JSON error body when the response was
// JSON, or the raw text otherwise.
type RequestError struct {
	Status     int
	StatusText string
	URL        string
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("dradis: HTTP %d %s for %s\nResponse: %s", e.Status, e.StatusText, e.URL, e.Body)
}

// NetworkError is returned when the request never produced an HTTP
// response: DNS failure, connection reset, timeout, TLS failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("dradis: network error while accessing %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
