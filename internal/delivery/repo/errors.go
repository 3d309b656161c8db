package repo

import "errors"

// ErrNotFound indicates a missing entity in the delivery repositories.
var ErrNotFound = errors.New("delivery: not found")

// ErrConflict indicates that a compare-and-swap status update lost to a
// concurrent change; the order is no longer in the expected status.
var ErrConflict = errors.New("delivery: status conflict")
