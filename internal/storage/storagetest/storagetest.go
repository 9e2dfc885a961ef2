// Package storagetest holds the behaviour every storage.Backend must show.
// Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"testing"

	"github.com/aanand-mishra/student-records/internal/storage"
	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Records is a fixed, well-formed data set.
func Records() []types.Student {
	return []types.Student{
		{ID: "200300400500", Name: "Siti Aminah", Gender: types.Female, Department: "Informatics", Term: 3, GPA: 3.75},
		{ID: "100300400500", Name: "Budi, Santoso", Gender: types.Male, Department: "Teknik Sipil", Term: 14, GPA: 2},
		{ID: "300300400500", Name: "Dewi", Gender: types.Female, Department: "Hukum", Term: 1, GPA: 0},
	}
}

// Run exercises a backend. open must return a fresh, empty backend; reopen
// must return a new handle onto the same medium after the first is closed.
func Run(t *testing.T, open func(t *testing.T) storage.Backend, reopen func(t *testing.T) storage.Backend) {
	ctx := context.Background()

	t.Run("empty load", func(t *testing.T) {
		b := open(t)
		defer b.Close()

		res, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Records)
		assert.Equal(t, 0, res.Dropped)
	})

	t.Run("save then load keeps order", func(t *testing.T) {
		b := open(t)
		defer b.Close()

		require.NoError(t, b.Save(ctx, Records()))

		res, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Records(), res.Records)
	})

	t.Run("save replaces", func(t *testing.T) {
		b := open(t)
		defer b.Close()

		require.NoError(t, b.Save(ctx, Records()))
		require.NoError(t, b.Save(ctx, Records()[:1]))

		res, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Records()[:1], res.Records)

		require.NoError(t, b.Save(ctx, nil))
		res, err = b.Load(ctx)
		require.NoError(t, err)
		assert.Empty(t, res.Records)
	})

	t.Run("survives reopen", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.Save(ctx, Records()))
		require.NoError(t, b.Close())

		b = reopen(t)
		defer b.Close()

		res, err := b.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, Records(), res.Records)
	})
}
