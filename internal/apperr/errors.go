package apperr

import "errors"

// ErrAlreadyExists reports a uniqueness violation, e.g. a second check-in
// on the same calendar day.
var ErrAlreadyExists = errors.New("already exists")
