package invalidation

import "errors"

var (
	ErrInvalidEvent   = errors.New("invalidation: invalid event")
	ErrPublishFailed  = errors.New("invalidation: publish failed")
	ErrSubscribeFailed = errors.New("invalidation: subscribe failed")
)
