package client

import (
	"fmt"
	"net/http"
)

// NetworkError reports a transport failure: DNS, refused connection,
// timeout or a cancelled context.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("news request to %s failed: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPStatusError reports a response with a non-2xx status.
type HTTPStatusError struct {
	Code int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("news API returned %d %s", e.Code, http.StatusText(e.Code))
}

// InvalidResponseError reports a body that is not a JSON array or a
// response whose content type is not JSON.
type InvalidResponseError struct {
	ContentType string
	Err         error
}

func (e *InvalidResponseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("news API returned unexpected content type %q", e.ContentType)
	}
	return fmt.Sprintf("news API returned an unreadable body: %v", e.Err)
}

func (e *InvalidResponseError) Unwrap() error { return e.Err }
