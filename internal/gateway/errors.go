package gateway

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrRefreshFailed  = errors.New("token refresh failed")
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNoAccessToken  = errors.New("response did not contain an access token")
)

// HTTPStatusError is returned when the remote server responds with a non-2xx status.
type HTTPStatusError struct {
	Method     string
	URL        string
	Status     string
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("http status response from %s %s: %s", e.Method, e.URL, e.Status)
}

// StatusCode returns the HTTP status carried by err, or 0 if err did not come
// from a non-2xx response.
func StatusCode(err error) int {
	var stErr *HTTPStatusError
	if errors.As(err, &stErr) {
		return stErr.StatusCode
	}
	return 0
}
