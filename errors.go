package europepmc

import "errors"

var (
	// ErrNotAvailable means the repository has no full text for an identifier,
	// either because the record is missing or the document has no <body>.
	ErrNotAvailable = errors.New("full text not available")

	// ErrMalformed means a fetched document could not be parsed as XML.
	ErrMalformed = errors.New("malformed document")

	// ErrUnexpectedStatus indicates a non-2xx HTTP response.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrEmptyID is returned when a record without identifier is stored.
	ErrEmptyID = errors.New("empty identifier")

	// ErrNotFound is returned when an identifier is not in the ledger.
	ErrNotFound = errors.New("not found")
)
