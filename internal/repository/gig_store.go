package repository

import (
	"context"
	"fmt"

	"github.com/iliyamo/gig-board/internal/model"
)

// Filterable gig fields. The names are the document field names used by
// every store implementation.
const (
	FieldLocation = "location"
	FieldCategory = "category"
)

var filterableFields = map[string]bool{
	FieldLocation: true,
	FieldCategory: true,
}

// FindQuery describes a single read against the store: exact-equality
// filters, an optional newest-first ordering and skip/limit pagination.
// A zero Limit means "no limit"; callers that want an empty page must not
// reach the store at all.
type FindQuery struct {
	Filter      map[string]string // field -> exact value
	NewestFirst bool              // order by created_at descending; natural order otherwise
	Skip        int64
	Limit       int64
}

// Where returns a copy of q with an additional equality filter.
func (q FindQuery) Where(field, value string) FindQuery {
	f := make(map[string]string, len(q.Filter)+1)
	for k, v := range q.Filter {
		f[k] = v
	}
	f[field] = value
	q.Filter = f
	return q
}

func (q FindQuery) validate() error {
	for k := range q.Filter {
		if !filterableFields[k] {
			return fmt.Errorf("%w: %q", ErrUnknownField, k)
		}
	}
	if q.Skip < 0 || q.Limit < 0 {
		return fmt.Errorf("negative skip/limit: %d/%d", q.Skip, q.Limit)
	}
	return nil
}

// GigStore is the document store as seen by the gig service. Insert
// assigns ID and CreatedAt on the passed gig. Implementations must be
// safe for concurrent use.
type GigStore interface {
	Insert(ctx context.Context, g *model.Gig) error
	Find(ctx context.Context, q FindQuery) ([]*model.Gig, error)
}
