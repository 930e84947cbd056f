package services

import "errors"

// ErrForbidden is returned when an authenticated user attempts to
// mutate a resource they do not own.
var ErrForbidden = errors.New("forbidden")
