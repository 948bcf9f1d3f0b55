package domain

import "errors"

// ErrInvalidInput is returned when simulation parameters fail validation.
var ErrInvalidInput = errors.New("invalid simulation input")
