package panopto

import (
	"errors"
	"net/http"

	"github.com/canvas-downloader/canvas-downloader/internal/pkg/canvas"
)

var (
	// ErrNoLaunchForm is returned when the course has no Panopto tool launch form
	ErrNoLaunchForm = errors.New("no panopto launch form")
	// ErrNoFolder is returned when the tool launch does not redirect to a folder
	ErrNoFolder = errors.New("no panopto folder in launch redirect")
	// ErrNoStream is returned when a session has no playable stream
	ErrNoStream = errors.New("no stream in session playlist")
)

// statusError classifies a failed Panopto response like a Canvas one
func statusError(resp *http.Response) error {
	kind := canvas.KindRemote
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = canvas.KindPermissionDenied
	case http.StatusNotFound:
		kind = canvas.KindNotFound
	default:
		if resp.StatusCode >= 500 {
			kind = canvas.KindTransientNetwork
		}
	}

	apiErr := &canvas.APIError{
		Kind:       kind,
		StatusCode: resp.StatusCode,
		Err:        errors.New(http.StatusText(resp.StatusCode)),
	}
	if resp.Request != nil {
		apiErr.URL = resp.Request.URL.String()
	}

	return apiErr
}
