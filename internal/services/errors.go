package services

import "errors"

// ErrValidation marks user-correctable input failures. Operations rejecting
// with it guarantee zero side effects.
var ErrValidation = errors.New("validation failed")
