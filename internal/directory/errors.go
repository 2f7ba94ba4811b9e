package directory

import "errors"

// ErrNotFound is returned when a valid slug has no entry in the directory.
var ErrNotFound = errors.New("slug not found")

// FetchError reports that the remote source could not be read (network,
// credentials or a malformed response). The previous snapshot is left as is.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "link directory fetch failed: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchError reports whether err is or wraps a *FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
