// Package pebblekv stores student records in an embedded Pebble key-value
// store. Each record lives under "student/<position>", with the position
// zero-padded so the keys iterate in store order. The value is the record's
// line in the flat file format.
package pebblekv

import (
	"context"
	"fmt"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/cockroachdb/pebble"
)

func init() {
	storage.Register(storage.DriverPebble, func(path string) (storage.Backend, error) {
		return New(path)
	})
}

var (
	keyPrefix = []byte("student/")
	// keyEnd is the first key past every record key ('/' + 1 == '0').
	keyEnd = []byte("student0")
)

// Store is the Pebble implementation of storage.Backend.
type Store struct {
	db *pebble.DB
}

// New opens (or creates) the Pebble directory at dir.
func New(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("pebblekv.New: open: %w", err)
	}
	return &Store{db: db}, nil
}

// Name implements storage.Backend.
func (s *Store) Name() string { return storage.DriverPebble }

// Load iterates every record key in order.
func (s *Store) Load(ctx context.Context) (codec.Result, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{LowerBound: keyPrefix, UpperBound: keyEnd})
	if err != nil {
		return codec.Result{}, fmt.Errorf("pebblekv.Load: iter: %w", err)
	}
	defer iter.Close()

	res := codec.Result{Records: make([]types.Student, 0)}
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return codec.Result{}, err
		}
		st, err := codec.UnmarshalRow(iter.Value())
		if err != nil {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, st)
	}
	if err := iter.Error(); err != nil {
		return codec.Result{}, fmt.Errorf("pebblekv.Load: %w", err)
	}
	return res, nil
}

// Save clears the record range and writes every record in one synced batch.
func (s *Store) Save(ctx context.Context, records []types.Student) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange(keyPrefix, keyEnd, nil); err != nil {
		return fmt.Errorf("pebblekv.Save: clear: %w", err)
	}
	for i, st := range records {
		v, err := codec.MarshalRow(st)
		if err != nil {
			return fmt.Errorf("pebblekv.Save: %w", err)
		}
		if err := b.Set(recordKey(i), v, nil); err != nil {
			return fmt.Errorf("pebblekv.Save: set %s: %w", st.ID, err)
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebblekv.Save: commit: %w", err)
	}
	return nil
}

// Close closes the Pebble database.
func (s *Store) Close() error {
	return s.db.Close()
}

func recordKey(pos int) []byte {
	return fmt.Appendf(append([]byte(nil), keyPrefix...), "%08d", pos)
}
