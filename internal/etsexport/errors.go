package etsexport

import "errors"

// ErrNilOverview is returned by Export when no overview is supplied.
var ErrNilOverview = errors.New("etsexport: overview is nil")
