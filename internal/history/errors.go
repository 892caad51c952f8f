package history

import "errors"

// ErrNotFound is returned when no export record has the requested ID.
var ErrNotFound = errors.New("export record not found")
