// Package registry owns the string records and the operations on them:
// create, lookup, filtered listing and deletion.
package registry

import (
	"context"

	"strreg/internal/analyzer"
)

// Record is one stored string plus its computed properties.
type Record struct {
	ID         int64               `json:"id"`
	Value      string              `json:"value"`
	Properties analyzer.Properties `json:"properties"`
}

// Key returns the case-insensitive identity of the record.
func (r *Record) Key() string {
	return analyzer.Fold(r.Value)
}

// Store holds records in insertion order. Implementations assign IDs from a
// strictly increasing counter that is never reused, and reject a second
// record with the same key.
type Store interface {
	// Insert assigns rec.ID and appends it. Returns a CONFLICT error when a
	// record with the same key exists.
	Insert(ctx context.Context, rec *Record) error
	// Find returns the record with the given key or a NOT_FOUND error.
	Find(ctx context.Context, key string) (*Record, error)
	// All returns every record in insertion order.
	All(ctx context.Context) ([]*Record, error)
	// Delete removes the record with the given key or returns NOT_FOUND.
	Delete(ctx context.Context, key string) error
	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)
	Close() error
}
