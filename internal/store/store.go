// Package store owns the student records: an ordered in-memory sequence
// mirrored to a storage.Backend.
//
// Every mutation runs as one critical section:
//
//	validate → build the next sequence → persist it → swap it in
//
// If persisting fails the previous sequence stays in place, so memory and
// the medium never disagree and no caller observes a half-applied change.
package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/search"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
)

// Store is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records []types.Student

	backend storage.Backend
	log     *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithMetrics records operation counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

// New returns an empty Store persisting to backend. Call Load before use
// to pick up what the backend already holds.
func New(backend storage.Backend, opts ...Option) *Store {
	s := &Store{
		records: make([]types.Student, 0),
		backend: backend,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory records with the backend's content.
// Malformed rows are skipped and a repeated NIM keeps only its first row;
// both counts are logged, nothing more.
func (s *Store) Load(ctx context.Context) (err error) {
	defer func() { s.metrics.ObserveOp("load", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.backend.Load(ctx)
	if err != nil {
		return &StorageError{Op: "load", Backend: s.backend.Name(), Err: err}
	}
	records, duplicates := dedupe(res.Records)
	if res.Dropped > 0 || duplicates > 0 {
		s.log.Warn("dropped malformed rows",
			slog.String("backend", s.backend.Name()),
			slog.Int("dropped", res.Dropped),
			slog.Int("duplicates", duplicates))
	}

	s.records = records
	s.metrics.SetRecords(len(s.records))

	s.log.Info("records loaded",
		slog.String("backend", s.backend.Name()),
		slog.Int("count", len(s.records)))
	return nil
}

// dedupe keeps the first record for every NIM and reports how many later
// ones it dropped.
func dedupe(records []types.Student) ([]types.Student, int) {
	out := make([]types.Student, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, r)
	}
	return out, len(records) - len(out)
}

// Save writes the current records to the backend.
func (s *Store) Save(ctx context.Context) (err error) {
	defer func() { s.metrics.ObserveOp("save", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persist(ctx, s.records)
}

// Insert validates st and appends it. It fails with a
// *validation.ValidationError, ErrDuplicateKey or a *StorageError.
func (s *Store) Insert(ctx context.Context, st types.Student) (err error) {
	defer func() { s.metrics.ObserveOp("insert", err) }()

	st = st.Normalize()
	if err := validation.Student(st); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if search.LinearSearch(s.records, st.ID) != search.NotFound {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, st.ID)
	}

	next := append(slices.Clone(s.records), st)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.swap(next)

	s.log.Info("student created", slog.String("id", st.ID))
	return nil
}

// Update replaces every non-key field of the record with NIM id, keeping
// its position. It fails with ErrNotFound, a *validation.ValidationError or
// a *StorageError.
func (s *Store) Update(ctx context.Context, id string, f types.StudentFields) (err error) {
	defer func() { s.metrics.ObserveOp("update", err) }()

	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := search.LinearSearch(s.records, id)
	if idx == search.NotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	updated := s.records[idx].WithFields(f).Normalize()
	if err := validation.Fields(updated.Fields()); err != nil {
		return err
	}

	next := slices.Clone(s.records)
	next[idx] = updated
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.swap(next)

	s.log.Info("student updated", slog.String("id", id))
	return nil
}

// Delete removes the record with NIM id. It fails with ErrNotFound or a
// *StorageError.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer func() { s.metrics.ObserveOp("delete", err) }()

	id = strings.TrimSpace(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := search.LinearSearch(s.records, id)
	if idx == search.NotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	next := slices.Delete(slices.Clone(s.records), idx, idx+1)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.swap(next)

	s.log.Info("student deleted", slog.String("id", id))
	return nil
}

// Sort reorders the stored sequence and persists the new order.
func (s *Store) Sort(ctx context.Context, o sorting.Options) (err error) {
	defer func() { s.metrics.ObserveOp("sort", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := sorting.Sort(slices.Clone(s.records), o)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.swap(next)

	s.log.Info("records sorted",
		slog.String("algorithm", string(o.Algorithm)),
		slog.String("key", string(o.Key)),
		slog.String("direction", string(o.Direction)))
	return nil
}

// FindByID returns a copy of the record with NIM id.
func (s *Store) FindByID(id string) (types.Student, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := search.LinearSearch(s.records, strings.TrimSpace(id))
	if idx == search.NotFound {
		return types.Student{}, false
	}
	return s.records[idx], true
}

// All returns a copy of the records in stored order.
func (s *Store) All() []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Filter returns the records whose NIM or name contains keyword.
func (s *Store) Filter(keyword string) []types.Student {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Filter(s.records, keyword)
}

// View filters by keyword and sorts the result for display. The stored
// order is not changed.
func (s *Store) View(keyword string, o sorting.Options) ([]types.Student, error) {
	return sorting.Sort(s.Filter(keyword), o)
}

// Export writes every record, unfiltered and in stored order, in the flat
// file format.
func (s *Store) Export(w io.Writer) error {
	if err := codec.Encode(w, s.All()); err != nil {
		return fmt.Errorf("store.Export: %w", err)
	}
	return nil
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// persist must be called with mu held.
func (s *Store) persist(ctx context.Context, records []types.Student) error {
	if err := s.backend.Save(ctx, records); err != nil {
		s.log.Error("failed to persist records",
			slog.String("backend", s.backend.Name()),
			slog.String("error", err.Error()))
		return &StorageError{Op: "save", Backend: s.backend.Name(), Err: err}
	}
	return nil
}

// swap must be called with mu held.
func (s *Store) swap(next []types.Student) {
	s.records = next
	s.metrics.SetRecords(len(next))
}
