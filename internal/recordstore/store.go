// Package recordstore defines the interface for storing and retrieving the
// entity records that lineage indexes and predictions are computed from.
//
// Records arrive in bulk, from record files or the HTTP host, and are read
// back whole for every computation. A record is identified by its URN;
// storing a record under an existing URN replaces it in place, so the order
// in which URNs were first stored is kept. That order is the "query order"
// used when laying out rank layers.
package recordstore

import (
	"context"
	"errors"

	"github.com/specialistvlad/timeliness/internal/lineage"
)

// ErrEmptyURN is returned when a record without a URN is stored.
var ErrEmptyURN = errors.New("record has an empty urn")

// Store is the interface for persisting lineage records.
//
// Implementations MUST be safe for concurrent use: the HTTP host reads while
// imports write.
type Store interface {
	// Put stores records, replacing any record with the same URN. Either all
	// records are stored or none is.
	Put(ctx context.Context, records ...lineage.Record) error

	// Get retrieves a single record by URN. It returns false when the record
	// does not exist.
	Get(ctx context.Context, urn string) (*lineage.Record, bool, error)

	// All returns every record in first-insertion order. The slice is a
	// snapshot owned by the caller.
	All(ctx context.Context) ([]lineage.Record, error)

	// Close releases the resources held by the store.
	Close() error
}

// Validate checks records before they are stored.
func Validate(records []lineage.Record) error {
	for i := range records {
		if records[i].URN == "" {
			return ErrEmptyURN
		}
	}
	return nil
}
