package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aanand-mishra/student-records/internal/codec"
	"github.com/aanand-mishra/student-records/internal/metrics"
	"github.com/aanand-mishra/student-records/internal/sorting"
	"github.com/aanand-mishra/student-records/internal/storage/csvfile"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

// memBackend keeps records in memory and can be told to fail.
type memBackend struct {
	mu       sync.Mutex
	records  []types.Student
	dropped  int
	failLoad bool
	failSave bool
	saves    int
}

func (m *memBackend) Load(ctx context.Context) (codec.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failLoad {
		return codec.Result{}, errors.New("disk unreadable")
	}
	return codec.Result{Records: append([]types.Student(nil), m.records...), Dropped: m.dropped}, nil
}

func (m *memBackend) Save(ctx context.Context, records []types.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSave {
		return errors.New("disk full")
	}
	m.saves++
	m.records = append([]types.Student(nil), records...)
	return nil
}

func (m *memBackend) Close() error { return nil }
func (m *memBackend) Name() string { return "mem" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) (*Store, *memBackend) {
	t.Helper()
	b := &memBackend{}
	s := New(b, WithLogger(quietLogger()), WithMetrics(metrics.New()))
	require.NoError(t, s.Load(context.Background()))
	return s, b
}

func student(id, name string, gpa float64) types.Student {
	return types.Student{
		ID:         id,
		Name:       name,
		Gender:     types.Female,
		Department: "Informatics",
		Term:       3,
		GPA:        gpa,
	}
}

func TestStore_InsertKeepsOrder(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti", 3.75)))
	require.NoError(t, s.Insert(ctx, student("100300400500", "Budi", 2.5)))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, "200300400500", all[0].ID)
	assert.Equal(t, "100300400500", all[1].ID)
	assert.Equal(t, all, b.records, "every insert is persisted")
	assert.Equal(t, 2, b.saves)
}

func TestStore_InsertDuplicate(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti", 3.75)))
	before := s.All()

	err := s.Insert(ctx, student("200300400500", "Other", 1.0))
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, before, s.All())
	assert.Equal(t, 1, b.saves)
}

func TestStore_InsertInvalid(t *testing.T) {
	s, b := newTestStore(t)

	bad := student("12345", "Siti", 4.5)
	err := s.Insert(context.Background(), bad)

	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("id"))
	assert.True(t, verr.Has("gpa"))
	assert.Empty(t, s.All())
	assert.Equal(t, 0, b.saves)
}

func TestStore_InsertNormalizes(t *testing.T) {
	s, _ := newTestStore(t)

	in := student(" 200300400500 ", "  Siti  ", 3.456)
	require.NoError(t, s.Insert(context.Background(), in))

	got, ok := s.FindByID("200300400500")
	require.True(t, ok)
	assert.Equal(t, "Siti", got.Name)
	assert.Equal(t, 3.46, got.GPA)
}

func TestStore_UpdateAndDeleteNotFound(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti", 3.75)))
	before := s.All()

	err := s.Update(ctx, "999999999999", student("", "X", 1).Fields())
	assert.ErrorIs(t, err, ErrNotFound)

	err = s.Delete(ctx, "999999999999")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, before, s.All())
	assert.Equal(t, 1, b.saves)
}

func TestStore_UpdateInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti", 3.75)))

	f := student("", "Siti", 3.75).Fields()
	f.Term = 20
	err := s.Update(ctx, "200300400500", f)

	verr, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.True(t, verr.Has("term"))

	got, _ := s.FindByID("200300400500")
	assert.Equal(t, 3, got.Term)
}

func TestStore_UpdateKeepsPosition(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("000000000001", "A", 1)))
	require.NoError(t, s.Insert(ctx, student("000000000002", "B", 2)))
	require.NoError(t, s.Insert(ctx, student("000000000003", "C", 3)))

	f := student("", "B2", 2.5).Fields()
	f.Gender = types.Male
	require.NoError(t, s.Update(ctx, "000000000002", f))

	all := s.All()
	assert.Equal(t, "000000000002", all[1].ID)
	assert.Equal(t, "B2", all[1].Name)
	assert.Equal(t, types.Male, all[1].Gender)
	assert.Equal(t, 2.5, all[1].GPA)
}

func TestStore_SaveFailureKeepsState(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti", 3.75)))

	b.failSave = true

	err := s.Insert(ctx, student("100300400500", "Budi", 2.5))
	assert.True(t, IsStorageError(err))
	assert.Len(t, s.All(), 1)

	err = s.Delete(ctx, "200300400500")
	assert.True(t, IsStorageError(err))
	assert.Len(t, s.All(), 1)

	err = s.Save(ctx)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "save", serr.Op)
	assert.Equal(t, "mem", serr.Backend)

	b.failSave = false
	require.NoError(t, s.Save(ctx))
}

func TestStore_LoadFailure(t *testing.T) {
	b := &memBackend{failLoad: true}
	s := New(b, WithLogger(quietLogger()))

	err := s.Load(context.Background())
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "load", serr.Op)
	assert.Empty(t, s.All())
}

func TestStore_LoadToleratesDroppedRows(t *testing.T) {
	b := &memBackend{records: []types.Student{student("200300400500", "Siti", 3.75)}, dropped: 3}
	s := New(b, WithLogger(quietLogger()))

	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, 1, s.Len())
}

func TestStore_AllIsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	require.NoError(t, s.Insert(context.Background(), student("200300400500", "Siti", 3.75)))

	all := s.All()
	all[0].Name = "mutated"

	got, _ := s.FindByID("200300400500")
	assert.Equal(t, "Siti", got.Name)
}

func TestStore_FindByIDEmpty(t *testing.T) {
	s, _ := newTestStore(t)
	_, ok := s.FindByID("200300400500")
	assert.False(t, ok)
}

func TestStore_SortPersistsOrder(t *testing.T) {
	s, b := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("000000000001", "a", 2.0)))
	require.NoError(t, s.Insert(ctx, student("000000000002", "b", 3.5)))
	require.NoError(t, s.Insert(ctx, student("000000000003", "c", 3.5)))
	require.NoError(t, s.Insert(ctx, student("000000000004", "d", 1.0)))

	require.NoError(t, s.Sort(ctx, sorting.Options{Algorithm: sorting.Merge, Key: sorting.KeyGPA, Direction: sorting.Descending}))

	want := []string{"000000000002", "000000000003", "000000000001", "000000000004"}
	got := make([]string, 0, 4)
	for _, st := range s.All() {
		got = append(got, st.ID)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, s.All(), b.records)

	err := s.Sort(ctx, sorting.Options{Algorithm: "quick", Key: sorting.KeyGPA, Direction: sorting.Descending})
	assert.Error(t, err)
}

func TestStore_ViewLeavesOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("000000000002", "Siti Aminah", 2.0)))
	require.NoError(t, s.Insert(ctx, student("000000000001", "Budi", 3.0)))
	require.NoError(t, s.Insert(ctx, student("000000000003", "Aminah", 1.0)))

	view, err := s.View("aminah", sorting.Options{Algorithm: sorting.Insertion, Key: sorting.KeyID, Direction: sorting.Ascending})
	require.NoError(t, err)
	require.Len(t, view, 2)
	assert.Equal(t, "000000000002", view[0].ID)
	assert.Equal(t, "000000000003", view[1].ID)

	assert.Equal(t, "000000000002", s.All()[0].ID)
}

func TestStore_Export(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Insert(ctx, student("200300400500", "Siti Aminah", 3.75)))

	var buf bytes.Buffer
	require.NoError(t, s.Export(&buf))
	assert.Equal(t,
		"NIM,NAMA,JENIS KELAMIN,JURUSAN,SEMESTER,IPK\n200300400500,Siti Aminah,Perempuan,Informatics,3,3.75\n",
		buf.String())
}

func TestStore_EndToEnd(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data_mahasiswa.csv")

	backend, err := csvfile.New(path)
	require.NoError(t, err)
	s := New(backend, WithLogger(quietLogger()))
	require.NoError(t, s.Load(ctx))
	assert.Empty(t, s.All())

	siti := types.Student{
		ID:         "200300400500",
		Name:       "Siti Aminah",
		Gender:     types.Female,
		Department: "Informatics",
		Term:       3,
		GPA:        3.75,
	}
	require.NoError(t, s.Insert(ctx, siti))
	require.Len(t, s.All(), 1)

	f := siti.Fields()
	f.Name = "Siti A."
	require.NoError(t, s.Update(ctx, siti.ID, f))
	assert.Equal(t, "Siti A.", s.All()[0].Name)

	// A fresh store over the same file sees the update.
	reloaded := New(backend, WithLogger(quietLogger()))
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, s.All(), reloaded.All())

	require.NoError(t, s.Delete(ctx, siti.ID))
	assert.Empty(t, s.All())

	require.NoError(t, reloaded.Load(ctx))
	assert.Empty(t, reloaded.All())
}

func TestStore_ConcurrentInserts(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, b := newTestStore(t)
	ctx := context.Background()

	ids := []string{"000000000001", "000000000002", "000000000003", "000000000004", "000000000005"}
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			return s.Insert(ctx, student(id, "x", 1))
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, len(ids), s.Len())
	assert.Len(t, b.records, len(ids))
}

func TestStore_ConcurrentDuplicateInserts(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, _ := newTestStore(t)
	ctx := context.Background()

	var (
		g         errgroup.Group
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			err := s.Insert(ctx, student("000000000001", "x", 1))
			if errors.Is(err, ErrDuplicateKey) {
				return nil
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, s.Len())
}

func TestStore_LoadDropsRepeatedIDs(t *testing.T) {
	b := &memBackend{records: []types.Student{
		student("200300400500", "Siti", 3.75),
		student("200300400501", "Budi", 2.5),
		student("200300400500", "Siti Copy", 1.0),
	}}
	s := New(b, WithLogger(quietLogger()))
	require.NoError(t, s.Load(context.Background()))

	require.Equal(t, 2, s.Len())
	got, ok := s.FindByID("200300400500")
	require.True(t, ok)
	assert.Equal(t, "Siti", got.Name)

	require.NoError(t, s.Delete(context.Background(), "200300400500"))
	_, ok = s.FindByID("200300400500")
	assert.False(t, ok)
	assert.Len(t, b.records, 1)
}

func TestStore_UpdateLoadedIrregularID(t *testing.T) {
	b := &memBackend{records: []types.Student{student("123", "Siti", 3.75)}}
	s := New(b, WithLogger(quietLogger()))
	require.NoError(t, s.Load(context.Background()))

	f := student("123", "Siti A.", 3.8).Fields()
	require.NoError(t, s.Update(context.Background(), "123", f))

	got, ok := s.FindByID("123")
	require.True(t, ok)
	assert.Equal(t, "Siti A.", got.Name)

	f.GPA = 4.5
	var verr *validation.ValidationError
	assert.ErrorAs(t, s.Update(context.Background(), "123", f), &verr)
}
