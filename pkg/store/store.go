// Package store keeps annotated sequences, keyed by feature database and
// sequence hash.
//
// A sequence is identified by the SHA-1 of its upper-cased bases
// ([SequenceHash]), so the same plasmid annotated against two feature
// databases yields two records with the same hash. Features come back
// ordered by start position, which is the order the layout resolver
// expects.
//
// Backends: [MemoryStore] here, and a MongoDB store in package mongo.
package store

import (
	"cmp"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/plasmap/pkg/errors"
	"github.com/matzehuels/plasmap/pkg/plasmid"
)

// Record is one stored sequence.
type Record struct {
	DB        string        `json:"db" bson:"db"`
	Hash      string        `json:"hash" bson:"hash"`
	Name      string        `json:"name,omitempty" bson:"name,omitempty"`
	Length    int           `json:"length" bson:"length"`
	Features  []plasmid.Row `json:"features,omitempty" bson:"features,omitempty"`
	UpdatedAt time.Time     `json:"updated_at" bson:"updated_at"`
}

// Store persists records. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the record with its features sorted by start. A missing
	// record is a NOT_FOUND error.
	Get(ctx context.Context, db, hash string) (*Record, error)
	// Put inserts or replaces a record and stamps UpdatedAt.
	Put(ctx context.Context, rec *Record) error
	// Delete removes a record. A missing record is a NOT_FOUND error.
	Delete(ctx context.Context, db, hash string) error
	// List returns the records of db without their features, sorted by
	// name then hash.
	List(ctx context.Context, db string) ([]Record, error)
	Close() error
}

// SequenceHash returns the hex SHA-1 of the upper-cased sequence.
func SequenceHash(sequence string) string {
	sum := sha1.Sum([]byte(strings.ToUpper(sequence)))
	return hex.EncodeToString(sum[:])
}

// ValidateDB checks a feature database name.
func ValidateDB(db string) error {
	return errors.ValidateDBName(db)
}

// ValidateKey checks a database name and a sequence hash.
func ValidateKey(db, hash string) error {
	if err := ValidateDB(db); err != nil {
		return err
	}
	return errors.ValidateSequenceHash(hash)
}

// Validate checks the record's key and sequence length. Feature spans are
// checked when a layout is computed.
func (r *Record) Validate() error {
	if err := ValidateKey(r.DB, r.Hash); err != nil {
		return err
	}
	if err := errors.ValidateSequenceLength(r.Length); err != nil {
		return err
	}
	for i, f := range r.Features {
		if err := errors.ValidateFeatureName(f.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidName, err, "feature %d", i)
		}
	}
	return nil
}

// SortFeatures orders features by start, then end. The sort is stable so
// features sharing a span keep their stored order.
func SortFeatures(rows []plasmid.Row) {
	slices.SortStableFunc(rows, func(a, b plasmid.Row) int {
		as, ae := span(a)
		bs, be := span(b)
		if c := cmp.Compare(as, bs); c != 0 {
			return c
		}
		return cmp.Compare(ae, be)
	})
}

func span(r plasmid.Row) (int, int) {
	if r.Start > r.End {
		return r.End, r.Start
	}
	return r.Start, r.End
}

// SortRecords orders records by name, then hash.
func SortRecords(recs []Record) {
	slices.SortFunc(recs, func(a, b Record) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Hash, b.Hash)
	})
}

// NotFound returns the error backends report for a missing record.
func NotFound(db, hash string) error {
	return errors.New(errors.ErrCodeNotFound, "no sequence %s in database %s", hash, db)
}
