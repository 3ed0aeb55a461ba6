package store

import "errors"

var (
	ErrNotFound                 = errors.New("store: locale not found")
	ErrUnavailable              = errors.New("store: unavailable")
	ErrEmptyLocale              = errors.New("store: locale cannot be empty")
	ErrFailedToParseDBConfig    = errors.New("store: failed to parse database configuration")
	ErrFailedToOpenDBConnection = errors.New("store: failed to open database connection")
	ErrHealthcheckFailed        = errors.New("store: healthcheck failed")
	ErrSetDialect               = errors.New("store migrator: failed to set dialect")
	ErrApplyMigrations          = errors.New("store migrator: failed to apply migrations")
)
