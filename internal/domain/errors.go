package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrAuth          = errors.New("authentication failed")
	ErrBadRequest    = errors.New("bad request")
	ErrNotConfigured = errors.New("not configured")
)

// ExternalAPIError is returned when the external insurance API answers with a
// non-2xx status or an unusable body. Per-vehicle sync failures carry it into
// the aggregate result instead of aborting the run.
type ExternalAPIError struct {
	Status int
	Body   string
}

func (e *ExternalAPIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("external api error: status %d", e.Status)
	}
	return fmt.Sprintf("external api error: status %d: %s", e.Status, e.Body)
}

// PushError is returned by the push sender when the provider rejects a
// delivery. A 404 or 410 status means the endpoint is gone and the subscriber
// must be pruned; any other status is transient.
type PushError struct {
	StatusCode int
}

func (e *PushError) Error() string {
	return fmt.Sprintf("push provider error: status %d", e.StatusCode)
}

// Gone reports whether the provider says the endpoint no longer exists.
func (e *PushError) Gone() bool {
	return e.StatusCode == 404 || e.StatusCode == 410
}
