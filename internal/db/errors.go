package db

import "errors"

// Domain-level database error sentinels.
var (
	ErrLinkNotFound = errors.New("link not found")
)
