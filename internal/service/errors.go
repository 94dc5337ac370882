package service

import (
	"errors"
	"net/http"
)

// badRequestError is returned for malformed generation requests.
type badRequestError struct{ msg string }

func badRequest(msg string) error { return badRequestError{msg: msg} }

func (e badRequestError) Error() string { return e.msg }

func (e badRequestError) StatusCode() int { return http.StatusBadRequest }

// IsBadRequest reports whether err was caused by invalid client input.
func IsBadRequest(err error) bool {
	var e badRequestError
	return errors.As(err, &e)
}
