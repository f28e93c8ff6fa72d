// Package store persists vehicle variants.
package store

import (
	"context"
	"errors"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// ErrNotFound is returned when no variant has the requested id.
var ErrNotFound = errors.New("variant not found")

// Store reads and writes variant records. Implementations copy records on
// the way in and out so callers may keep mutating their values.
type Store interface {
	Create(ctx context.Context, rec *types.VariantRecord) error
	Get(ctx context.Context, id string) (*types.VariantRecord, error)
	// Update replaces every mutable column of an existing record.
	Update(ctx context.Context, rec *types.VariantRecord) error
	Delete(ctx context.Context, id string) error
	// List returns one page of records ordered by creation time and the
	// total number of matches.
	List(ctx context.Context, opts ListOptions) ([]*types.VariantRecord, int, error)
}

// ListOptions filter and page a List call.
type ListOptions struct {
	ModelID string
	Limit   int
	Offset  int
}

// DefaultLimit is used when ListOptions.Limit is not positive.
const DefaultLimit = 20

// MaxLimit caps ListOptions.Limit.
const MaxLimit = 100

func (o ListOptions) normalized() ListOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	return o
}
