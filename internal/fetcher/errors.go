package fetcher

import "errors"

var (
	// ErrHTTPStatus is wrapped by failures caused by a 4xx or 5xx response.
	ErrHTTPStatus = errors.New("unexpected HTTP status")
	// ErrUnsupportedProxy is returned for proxy URLs with an unknown scheme.
	ErrUnsupportedProxy = errors.New("unsupported proxy scheme")
	// ErrOffHostRedirect is wrapped by failures caused by a redirect to another host.
	ErrOffHostRedirect = errors.New("redirect to another host")
	// ErrInvalidHeader is returned for operator headers not in "Name: value" form.
	ErrInvalidHeader = errors.New("invalid header, expected \"Name: value\"")
)
