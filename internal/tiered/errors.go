package tiered

import "errors"

var (
	ErrLoadFailed     = errors.New("tiered: locale load failed")
	ErrInvalidKeyPath = errors.New("tiered: invalid key path")
)
