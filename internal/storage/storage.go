// Package storage defines the Backend interface: the contract any
// persistence medium must satisfy to hold the student records.
//
// WHY AN INTERFACE?
// ─────────────────
// The store (internal/store) keeps the records in memory and only needs two
// things from the medium: read everything, and replace everything. By
// depending on this interface alone:
//
//   - Switching media = implement the interface, change the driver name in
//     the config. Zero store changes.
//
//   - Writing tests = pass a fake that satisfies the interface. No files or
//     databases needed to check the store's rules.
//
// Three implementations ship with the application: csvfile (the default
// flat file), sqlite and pebble.
package storage

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/types"
)

// Driver names accepted by the storage.driver config key.
const (
	DriverCSV    = "csv"
	DriverSQLite = "sqlite"
	DriverPebble = "pebble"
)

// Backend is the persistence contract.
type Backend interface {
	// Load returns every stored record in order. If nothing has been stored
	// yet, the backend creates an empty medium and returns zero records.
	// Malformed rows are skipped and counted in the result.
	Load(ctx context.Context) (codec.Result, error)

	// Save replaces the stored records with records, atomically: a later
	// Load sees either the previous set or this one, never a mix.
	Save(ctx context.Context, records []types.Student) error

	// Close releases any file handles or connections.
	Close() error

	// Name identifies the backend in logs.
	Name() string
}

// Opener builds a Backend for a path.
type Opener func(path string) (Backend, error)

var openers = map[string]Opener{}

// Register makes a driver available to Open. Backends call it from init.
func Register(driver string, open Opener) {
	openers[driver] = open
}

// Open returns the Backend registered as driver, opened at path.
func Open(driver, path string) (Backend, error) {
	open, ok := openers[driver]
	if !ok {
		return nil, fmt.Errorf("storage.Open: unknown driver %q", driver)
	}
	b, err := open(path)
	if err != nil {
		return nil, fmt.Errorf("storage.Open: %s: %w", driver, err)
	}
	return b, nil
}
