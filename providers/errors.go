package providers

import "errors"

var (
	// ErrCredentialsAreRequired is returned if you are trying to
	// initialize a provider which requires some credentials to work.
	ErrCredentialsAreRequired = errors.New("credentials are required")

	// ErrInsightsNotSupported is returned by providers which have no
	// data about anonymizers.
	ErrInsightsNotSupported = errors.New("insights are not supported by this provider")

	// ErrDatabasePathIsRequired is returned if offline provider has no
	// path to the database.
	ErrDatabasePathIsRequired = errors.New("path to the database is required")

	// ErrProviderIsUnavailable is returned by health checks if
	// provider does not accept requests at the moment.
	ErrProviderIsUnavailable = errors.New("provider is unavailable")
)
