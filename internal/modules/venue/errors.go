package venue

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("venue not found")
)
