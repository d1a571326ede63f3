package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/gig-board/internal/model"
)

// MemoryGigRepo keeps gigs in process memory in insertion order. It backs
// STORE_DRIVER=memory and the service and handler tests.
type MemoryGigRepo struct {
	mu   sync.RWMutex
	gigs []model.Gig

	// FailInsert, when set, is returned by Insert instead of storing.
	FailInsert error
	// FailFind, when set, is returned by Find.
	FailFind error

	now func() time.Time
}

// NewMemoryGigRepo returns an empty in-memory store.
func NewMemoryGigRepo() *MemoryGigRepo {
	return &MemoryGigRepo{now: time.Now}
}

// Insert appends a copy of g. The context is honoured so that an expired
// deadline behaves like an unreachable store.
func (r *MemoryGigRepo) Insert(ctx context.Context, g *model.Gig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert != nil {
		return r.FailInsert
	}
	g.ID = uuid.NewString()
	g.CreatedAt = r.now().UTC()
	r.gigs = append(r.gigs, *g)
	return nil
}

// Find filters, orders and pages a snapshot of the stored gigs.
func (r *MemoryGigRepo) Find(ctx context.Context, q FindQuery) ([]*model.Gig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := q.validate(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	if r.FailFind != nil {
		r.mu.RUnlock()
		return nil, r.FailFind
	}
	matched := make([]*model.Gig, 0, len(r.gigs))
	for i := range r.gigs {
		g := r.gigs[i]
		if matches(&g, q.Filter) {
			matched = append(matched, &g)
		}
	}
	r.mu.RUnlock()

	if q.NewestFirst {
		// reverse insertion order first so equal timestamps keep newest first
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})
	}

	if q.Skip >= int64(len(matched)) {
		return []*model.Gig{}, nil
	}
	matched = matched[q.Skip:]
	if q.Limit > 0 && q.Limit < int64(len(matched)) {
		matched = matched[:q.Limit]
	}
	return matched, nil
}

// Len reports how many gigs are stored.
func (r *MemoryGigRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.gigs)
}

func matches(g *model.Gig, filter map[string]string) bool {
	for k, v := range filter {
		switch k {
		case FieldLocation:
			if g.Location != v {
				return false
			}
		case FieldCategory:
			if g.Category != v {
				return false
			}
		default:
			return false
		}
	}
	return true
}
