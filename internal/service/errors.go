package service

import "errors"

var (
	ErrNotFound   = errors.New("error not found")
	ErrEmptyQuery = errors.New("error empty query")
	ErrUpstream   = errors.New("error upstream failure")
)
