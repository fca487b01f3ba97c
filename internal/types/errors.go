package types

import "errors"

// Resolution error taxonomy. All of these are absorbed at the provider
// resolver boundary and turned into empty candidates; none of them should
// ever reach an HTTP response on their own.
var (
	// ErrNoMatches means the proximity cache had nothing within the
	// requested radius. Expected and non-fatal; it drives the live fetch.
	ErrNoMatches = errors.New("no matches in cache")

	// ErrNoDataReturned means a live provider could not be reached or
	// returned a non-success response.
	ErrNoDataReturned = errors.New("no data returned from provider")

	// ErrNoAddress means the provider responded but the payload lacked the
	// fields required to build a placename.
	ErrNoAddress = errors.New("no address in provider response")

	// ErrNotImplemented marks a mis-wired adapter. Seeing it at runtime is
	// a defect, not a condition to recover from.
	ErrNotImplemented = errors.New("not implemented")
)
