package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matzehuels/plasmap/pkg/plasmid"
	"github.com/matzehuels/plasmap/pkg/store"
	"github.com/matzehuels/plasmap/pkg/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, func(*testing.T) store.Store { return store.NewMemoryStore() })
}

func TestSequenceHash(t *testing.T) {
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", store.SequenceHash("abc"))
	assert.Equal(t, store.SequenceHash("ABC"), store.SequenceHash("abc"), "case does not matter")
	assert.Len(t, store.SequenceHash("GATTACA"), 40)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		db      string
		hash    string
		wantErr bool
	}{
		{"valid", "giraffe", store.SequenceHash("ATG"), false},
		{"dotted db", "default.v2", store.SequenceHash("ATG"), false},
		{"empty db", "", store.SequenceHash("ATG"), true},
		{"db with slash", "a/b", store.SequenceHash("ATG"), true},
		{"db with parent segment", "maps..old", store.SequenceHash("ATG"), true},
		{"short hash", "giraffe", "abc", true},
		{"upper-case hash", "giraffe", "A9993E364706816ABA3E25717850C26C9CD0D89D", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.ValidateKey(tt.db, tt.hash)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestSortFeatures(t *testing.T) {
	rows := []plasmid.Row{
		{Name: "c", Start: 300, End: 400},
		{Name: "reverse", Start: 250, End: 100},
		{Name: "a", Start: 100, End: 200},
		{Name: "a2", Start: 100, End: 200},
	}
	store.SortFeatures(rows)
	names := []string{rows[0].Name, rows[1].Name, rows[2].Name, rows[3].Name}
	assert.Equal(t, []string{"a", "a2", "reverse", "c"}, names)
}
