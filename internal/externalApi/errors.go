package externalApi

import "errors"

var (
	ErrNotFound  = errors.New("error not found")
	ErrUpstream  = errors.New("error upstream api")
	ErrMalformed = errors.New("error malformed upstream payload")
)
