package canvas

import (
	"errors"
	"fmt"
)

// Kind classifies a remote failure
type Kind int

const (
	// KindTransientNetwork is a transport error or a 5xx/408/425 response
	KindTransientNetwork Kind = iota
	// KindRateLimited is a 429 response
	KindRateLimited
	// KindPermissionDenied is a 401/403 response or an "unauthorized" payload
	KindPermissionDenied
	// KindNotFound is a 404 response or a "not found" payload
	KindNotFound
	// KindDecode is a payload that could not be decoded into a known shape
	KindDecode
	// KindRemote is any other terminal response
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindTransientNetwork:
		return "transient network"
	case KindRateLimited:
		return "rate limited"
	case KindPermissionDenied:
		return "permission denied"
	case KindNotFound:
		return "not found"
	case KindDecode:
		return "decode"
	case KindRemote:
		return "remote"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

var (
	// ErrUnrecognizedShape is returned when a payload matches none of the accepted shapes
	ErrUnrecognizedShape = errors.New("unrecognized payload shape")
	// ErrRetriesExceeded is wrapped by errors returned after the last attempt
	ErrRetriesExceeded = errors.New("retries exceeded")
	// ErrStalled is returned when a server stays silent longer than the client timeout
	ErrStalled = errors.New("no data received within timeout")
	// ErrInvalidBaseURL is returned when the client base URL cannot be used
	ErrInvalidBaseURL = errors.New("invalid canvas base URL")
)

// APIError is a failed Canvas request
type APIError struct {
	Kind       Kind
	StatusCode int
	URL        string
	Err        error
}

func (e *APIError) Error() string {
	msg := e.Kind.String()
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.URL != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.URL)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first APIError in err's chain
func KindOf(err error) (Kind, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

// IsSkippable reports whether err means the resource is unavailable to
// the user, as opposed to a failure worth reporting
func IsSkippable(err error) bool {
	kind, ok := KindOf(err)
	return ok && (kind == KindPermissionDenied || kind == KindNotFound)
}
