package model

import (
	"errors"
	"fmt"
	"net/http"
)

// tooBusyError signals queue timeout/overflow for 429 mapping.
type tooBusyError struct{ reason string }

func (e tooBusyError) Error() string { return "model too busy: " + e.reason }

func (e tooBusyError) StatusCode() int { return http.StatusTooManyRequests }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// notReadyError is returned while the model has not finished warm-up or
// failed to load.
type notReadyError struct{ state State }

func (e notReadyError) Error() string { return "model not ready: " + string(e.state) }

func (e notReadyError) StatusCode() int { return http.StatusServiceUnavailable }

// IsNotReady reports whether err indicates the model cannot serve yet.
func IsNotReady(err error) bool {
	var e notReadyError
	return errors.As(err, &e)
}

// countMismatchError is returned when the backend produced a different number
// of images than requested.
type countMismatchError struct{ got, want int }

func (e countMismatchError) Error() string {
	return fmt.Sprintf("model returned %d images, want %d", e.got, e.want)
}

// IsCountMismatch reports whether err is a backend image count mismatch.
func IsCountMismatch(err error) bool {
	var e countMismatchError
	return errors.As(err, &e)
}
