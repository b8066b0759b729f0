package gallery

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel matched by every *ValidationError.
var ErrValidation = errors.New("validation failed")

// ErrUploadInProgress is returned when an upload is requested while one runs.
var ErrUploadInProgress = errors.New("upload already in progress")

// NetworkError reports a rejected remote call or a non-success status.
type NetworkError struct {
	Op      string // "list", "delete", "upload", ...
	Status  int    // HTTP status, 0 if the request never completed
	Message string // server-provided message, if any
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: server returned status %d", e.Op, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": request failed"
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports bad user input caught before any network call.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// LoadError reports a detail image that failed to fetch or decode.
type LoadError struct {
	URL string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load image %s: %v", e.URL, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// noticeFor turns any failure into the text shown to the user.
func noticeFor(action string, err error) string {
	var netErr *NetworkError
	if errors.As(err, &netErr) && netErr.Message != "" {
		return fmt.Sprintf("%s failed: %s", action, netErr.Message)
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Reason
	}
	return fmt.Sprintf("%s failed: %v", action, err)
}
