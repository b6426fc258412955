package geolib

import (
	"errors"
	"net/http"
)

var (
	// ErrAddressNotFound has to be returned (or wrapped) by providers if
	// they have no data about the given IP address.
	ErrAddressNotFound = errors.New("address is not found")

	// ErrMissingCacheKey is returned if somebody tries to persist a
	// record without translated address. This is a programming error.
	ErrMissingCacheKey = errors.New("translated address is empty")

	// ErrCorruptedEntry is wrapped by stores if a persisted payload
	// cannot be decoded into CacheEntry. Such rows are treated as
	// misses and overwritten.
	ErrCorruptedEntry = errors.New("cache entry is corrupted")

	ErrCircuitBreakerOpened = errors.New("circuit breaker is opened")
	ErrCircuitBreakerIgnore = errors.New("ignore this error")
)

// ErrorCode is a machine-readable error identifier which is sent to
// the clients.
type ErrorCode string

const (
	CodeInvalidHostname          ErrorCode = "INVALID_HOSTNAME"
	CodeEmptyHostname            ErrorCode = "EMPTY_HOSTNAME"
	CodeLocalAddress             ErrorCode = "LOCAL_ADDRESS"
	CodeHostnameResolutionFailed ErrorCode = "HOSTNAME_RESOLUTION_FAILED"
	CodeAddressNotFound          ErrorCode = "ADDRESS_NOT_FOUND"
	CodeGeoIPError               ErrorCode = "GEOIP_ERROR"
	CodeInvalidJSON              ErrorCode = "INVALID_JSON"
	CodeNullRequest              ErrorCode = "NULL_REQUEST"
	CodeEmptyRequestList         ErrorCode = "EMPTY_REQUEST_LIST"
	CodeNotFound                 ErrorCode = "NOT_FOUND"
	CodeInternalError            ErrorCode = "INTERNAL_ERROR"
)

var errorCodeDetails = map[ErrorCode]struct {
	statusCode int
	message    string
}{
	CodeInvalidHostname:          {http.StatusBadRequest, "Hostname is invalid or cannot be resolved"},
	CodeEmptyHostname:            {http.StatusBadRequest, "Hostname is empty"},
	CodeLocalAddress:             {http.StatusBadRequest, "Local and private addresses cannot be geolocated"},
	CodeHostnameResolutionFailed: {http.StatusBadRequest, "Hostname cannot be resolved"},
	CodeAddressNotFound:          {http.StatusNotFound, "There is no geolocation data for this address"},
	CodeGeoIPError:               {http.StatusBadRequest, "Geolocation provider has failed to process this address"},
	CodeInvalidJSON:              {http.StatusBadRequest, "Request body must be a JSON array of strings"},
	CodeNullRequest:              {http.StatusBadRequest, "Request body is empty"},
	CodeEmptyRequestList:         {http.StatusBadRequest, "Request list is empty"},
	CodeNotFound:                 {http.StatusNotFound, "Cache entry is not found"},
	CodeInternalError:            {http.StatusInternalServerError, "Internal error"},
}

type jsonLookupError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Hostname string    `json:"hostname,omitempty"`
}

// LookupError is an error which is returned by Geolocator. It carries
// a code, a hostname it relates to and an original error. Original
// error is never serialized: clients should not see internals.
type LookupError struct {
	Code     ErrorCode
	Hostname string

	err error
}

func (l *LookupError) Message() string {
	if l == nil {
		return ""
	}

	return errorCodeDetails[l.Code].message
}

func (l *LookupError) StatusCode() int {
	if l != nil {
		if details, ok := errorCodeDetails[l.Code]; ok {
			return details.statusCode
		}
	}

	return http.StatusInternalServerError
}

func (l *LookupError) Unwrap() error {
	if l == nil {
		return nil
	}

	return l.err
}

func (l *LookupError) Error() string {
	switch {
	case l == nil:
		return ""
	case l.err != nil:
		return string(l.Code) + ": " + l.err.Error()
	}

	return string(l.Code) + ": " + l.Message()
}

func (l *LookupError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&jsonLookupError{
		Code:     l.Code,
		Message:  l.Message(),
		Hostname: l.Hostname,
	})
}

func newLookupError(code ErrorCode, hostname string, err error) *LookupError {
	return &LookupError{
		Code:     code,
		Hostname: hostname,
		err:      err,
	}
}

// AsLookupError extracts LookupError from the error chain. Errors of
// unknown nature become CodeInternalError.
func AsLookupError(err error, hostname string) *LookupError {
	var lookupErr *LookupError

	if errors.As(err, &lookupErr) {
		return lookupErr
	}

	return newLookupError(CodeInternalError, hostname, err)
}

type providerError struct {
	err error
}

func (p *providerError) Error() string {
	return "provider has failed: " + p.err.Error()
}

func (p *providerError) Unwrap() error {
	return p.err
}
