package providers

import "errors"

var (
	// ErrAuthTokenIsRequired is returned if you are trying to initialize
	// a provider which requires some token to work.
	ErrAuthTokenIsRequired = errors.New("auth token is required")

	// ErrDatabaseIsClosed is returned if offline provider was closed.
	ErrDatabaseIsClosed = errors.New("database is closed")
)

const (
	reasonAddressNotSupported = "only IP addresses are supported"
	reasonIPNotSupported      = "IP addresses are not supported"
	reasonReverseNotSupported = "reverse geocoding is not supported"
)
