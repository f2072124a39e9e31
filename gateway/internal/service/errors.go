package service

import (
	"errors"
	"time"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
	ErrDisabled   = errors.New("disabled")   // 503
)

// These messages reach API clients verbatim.
var (
	ErrUserExists        = errors.New("User already exists")
	ErrLoginFailed       = errors.New("Login failed")
	ErrIncorrectPassword = errors.New("Incorrect password")
	ErrLogoutFailed      = errors.New("Logout failed")
)

// eventTimeout bounds how long a request waits on the event stream.
const eventTimeout = 2 * time.Second
