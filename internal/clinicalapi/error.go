package clinicalapi

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError is a non-2xx response from the clinical API.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clinical api: %d %s", e.StatusCode, e.Message)
}

// IsAuthRejection reports whether the error is a 401 or 403 from the
// clinical API. On the queue fetch this means the session is dead; on
// action endpoints it is an ordinary permissions failure.
func IsAuthRejection(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden
}
