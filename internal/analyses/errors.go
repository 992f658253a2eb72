package analyses

import "errors"

// ErrNotFound is returned when a user has no analysis records.
var ErrNotFound = errors.New("analysis not found")
