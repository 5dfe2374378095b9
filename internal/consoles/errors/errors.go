package errors

import "errors"

var (
	ErrNotFound = errors.New("console not found")
)
