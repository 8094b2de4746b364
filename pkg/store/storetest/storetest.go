// Package storetest holds behavior tests every store backend must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
	"github.com/matzehuels/plasmap/pkg/store"
)

// Run exercises a backend. newStore must return an empty store and register
// its own cleanup.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"put and get", testPutGet},
		{"features sorted by start", testSorted},
		{"replace", testReplace},
		{"missing record", testMissing},
		{"delete", testDelete},
		{"list", testList},
		{"invalid keys", testInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// PUC19 returns a record with unsorted features.
func PUC19(db string) *store.Record {
	return &store.Record{
		DB:     db,
		Hash:   store.SequenceHash("tcgcgcgtttcggtgatgacgg"),
		Name:   "pUC19",
		Length: 2686,
		Features: []plasmid.Row{
			{Name: "ori", Start: 850, End: 1439, Type: "Origin"},
			{Name: "AmpR", Start: 2486, End: 1626, Type: "Gene"},
			{Name: "lacZα", Start: 146, End: 469, Type: "Gene"},
			{Name: "EcoRI", Start: 396, End: 401, Type: "Enzyme", Cut: ptr(397)},
		},
	}
}

func ptr[T any](v T) *T { return &v }

func testPutGet(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := PUC19("giraffe")
	require.NoError(t, s.Put(ctx, rec))
	assert.False(t, rec.UpdatedAt.IsZero(), "Put stamps the record")

	got, err := s.Get(ctx, rec.DB, rec.Hash)
	require.NoError(t, err)
	assert.Equal(t, "pUC19", got.Name)
	assert.Equal(t, 2686, got.Length)
	require.Len(t, got.Features, 4)
	require.NotNil(t, got.Features[1].Cut)
	assert.Equal(t, 397, *got.Features[1].Cut)
}

func testSorted(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := PUC19("giraffe")
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, rec.DB, rec.Hash)
	require.NoError(t, err)
	names := make([]string, len(got.Features))
	for i, f := range got.Features {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"lacZα", "EcoRI", "ori", "AmpR"}, names)
	assert.Equal(t, 2486, got.Features[3].Start, "stored rows keep their orientation")
}

func testReplace(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := PUC19("giraffe")
	require.NoError(t, s.Put(ctx, rec))

	rec.Features = rec.Features[:1]
	rec.Name = "pUC19 (trimmed)"
	require.NoError(t, s.Put(ctx, rec))

	got, err := s.Get(ctx, rec.DB, rec.Hash)
	require.NoError(t, err)
	assert.Equal(t, "pUC19 (trimmed)", got.Name)
	assert.Len(t, got.Features, 1)
}

func testMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := PUC19("giraffe")
	require.NoError(t, s.Put(ctx, rec))

	_, err := s.Get(ctx, "other", rec.Hash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "hash is scoped by database")
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	rec := PUC19("giraffe")
	require.NoError(t, s.Put(ctx, rec))
	require.NoError(t, s.Delete(ctx, rec.DB, rec.Hash))

	_, err := s.Get(ctx, rec.DB, rec.Hash)
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound))
	assert.True(t, errors.Is(s.Delete(ctx, rec.DB, rec.Hash), errors.ErrCodeNotFound))
}

func testList(t *testing.T, s store.Store) {
	ctx := context.Background()
	a := PUC19("giraffe")
	b := PUC19("giraffe")
	b.Name = "pBR322"
	b.Hash = store.SequenceHash("ttcttgaagacgaaagggcc")
	c := PUC19("other")
	for _, r := range []*store.Record{a, b, c} {
		require.NoError(t, s.Put(ctx, r))
	}

	recs, err := s.List(ctx, "giraffe")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "pBR322", recs[0].Name)
	assert.Equal(t, "pUC19", recs[1].Name)
	assert.Empty(t, recs[0].Features, "listings carry no features")

	recs, err = s.List(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func testInvalid(t *testing.T, s store.Store) {
	ctx := context.Background()

	rec := PUC19("giraffe")
	rec.Hash = "not-a-hash"
	assert.Error(t, s.Put(ctx, rec))

	rec = PUC19("bad db name")
	assert.True(t, errors.Is(s.Put(ctx, rec), errors.ErrCodeInvalidName))

	rec = PUC19("giraffe")
	rec.Length = 0
	assert.True(t, errors.Is(s.Put(ctx, rec), errors.ErrCodeInvalidSequence))

	_, err := s.Get(ctx, "giraffe", "ABC")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))

	_, err = s.List(ctx, "../etc")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidName))
}
