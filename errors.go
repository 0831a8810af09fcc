package docstore

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when no document exists at the key.
	ErrNotFound = errors.New("document not found")

	// ErrNoMatch means a query selector matched zero documents.
	ErrNoMatch = errors.New("no documents matched")

	// ErrPageOutOfRange means the selector matched something, but the
	// requested page starts past the end of the matched set.
	ErrPageOutOfRange = errors.New("page out of range")

	// ErrBadRequest covers invalid pagination parameters and queries without
	// any selector.
	ErrBadRequest = errors.New("bad request")

	ErrSecondaryIndexUnavailable = errors.New("secondary index not configured")
	ErrEncodingTooLarge          = errors.New("encoded document too large")

	ErrAlreadyRegistered = errors.New("collection already registered")
	ErrNotRegistered     = errors.New("collection not registered")
	ErrRegionInUse       = errors.New("region already in use")
	ErrRegionsExhausted  = errors.New("no free regions left")
)

type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}

// CollectionError carries the collection and key an operation failed on.
// Match the kind of failure with errors.Is against the Err* sentinels.
type CollectionError struct {
	Collection string
	Key        *CompositeKey
	Msg        string
	Err        error
}

func collErrf(coll string, key *CompositeKey, err error, format string, args ...any) error {
	return &CollectionError{coll, key, fmt.Sprintf(format, args...), err}
}

func (e *CollectionError) Unwrap() error {
	return e.Err
}

func (e *CollectionError) Error() string {
	var buf strings.Builder
	buf.WriteString(e.Collection)
	if e.Key != nil {
		buf.WriteByte('/')
		buf.WriteString(e.Key.String())
	}
	if e.Msg != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Msg)
		if e.Err != nil {
			buf.WriteString(": ")
			buf.WriteString(e.Err.Error())
		}
	} else if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}

// errorKind maps an error to the sentinel name used in metric labels.
func errorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	case errors.Is(err, ErrPageOutOfRange):
		return "page_out_of_range"
	case errors.Is(err, ErrBadRequest):
		return "bad_request"
	case errors.Is(err, ErrSecondaryIndexUnavailable):
		return "secondary_index_unavailable"
	case errors.Is(err, ErrEncodingTooLarge):
		return "encoding_too_large"
	default:
		var de *DataError
		if errors.As(err, &de) {
			return "data"
		}
		return "internal"
	}
}
