package tree

import "errors"

var (
	ErrInvalidPath = errors.New("tree: invalid key path")
	ErrMalformed   = errors.New("tree: malformed translation tree")
)
