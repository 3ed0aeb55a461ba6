package onair

import (
	"errors"

	"github.com/dmitrymomot/onair/internal/tiered"
)

var (
	ErrInvalidStorageMode = errors.New("onair: invalid storage mode")
	ErrStoreRequired      = errors.New("onair: database mode requires a store")
	ErrFSRequired         = errors.New("onair: file mode requires a locales filesystem")
	ErrNoInvalidationBus  = errors.New("onair: no invalidation bus configured")
	ErrInvalidSchedule    = errors.New("onair: invalid refresh schedule")

	// ErrInvalidKeyPath is returned for empty keys and keys with empty
	// segments such as "a..b".
	ErrInvalidKeyPath = tiered.ErrInvalidKeyPath
	// ErrLoadFailed wraps store and decoding failures while loading a
	// locale. Lookups only return it when raising is enabled.
	ErrLoadFailed = tiered.ErrLoadFailed
)
