package store

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateKey is returned by Insert when the NIM is already taken.
	ErrDuplicateKey = errors.New("NIM sudah ada")

	// ErrNotFound is returned when no record has the requested NIM.
	ErrNotFound = errors.New("NIM tidak ditemukan")
)

// StorageError reports that the persistence medium could not be read or
// written. The in-memory records are unchanged when it is returned.
type StorageError struct {
	Op      string // "load" or "save"
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s (%s): %v", e.Op, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err is, or wraps, a *StorageError.
func IsStorageError(err error) bool {
	var serr *StorageError
	return errors.As(err, &serr)
}
