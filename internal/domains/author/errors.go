package author

import "errors"

// Repository-level errors
var (
	ErrAuthorNotFound = errors.New("author not found")
)
