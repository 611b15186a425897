// Package storage holds types shared by the persistence adapters.
package storage

import "errors"

// ErrNotFound is returned by lookups that match nothing.
var ErrNotFound = errors.New("record not found")
