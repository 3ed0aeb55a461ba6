package simple

import "errors"

var (
	// ErrDuplicateLocale is returned when two files name the same locale,
	// such as en.yml and en.json.
	ErrDuplicateLocale = errors.New("simple: duplicate locale file")
)
