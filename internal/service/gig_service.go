// Package service implements the gig operations on top of a GigStore:
// one mutation (createGig) and three list queries (getAllGigs,
// getGigsByLocation, getGigsByCategory). Each call is a stateless
// request/response transaction against the store; the service keeps no
// mutable state of its own and is safe for concurrent use.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/gig-board/internal/metrics"
	"github.com/iliyamo/gig-board/internal/model"
	"github.com/iliyamo/gig-board/internal/repository"
)

// Operation names, shared with the handler layer and metrics labels.
const (
	OpCreateGig         = "createGig"
	OpGetAllGigs        = "getAllGigs"
	OpGetGigsByLocation = "getGigsByLocation"
	OpGetGigsByCategory = "getGigsByCategory"
)

// GigsList is the envelope returned by every list operation. Gigs is never
// nil so it always serializes as an array.
type GigsList struct {
	Gigs []*model.Gig `json:"gigs"`
}

// CreateGigPayload is the envelope returned by createGig.
type CreateGigPayload struct {
	Gig *model.Gig `json:"gig"`
}

// Options tunes a GigService. The zero value keeps locations as given,
// lists getAllGigs in store order and applies no extra store deadline.
type Options struct {
	// LowercaseLocation lowercases location on write and on filter.
	LowercaseLocation bool
	// NewestFirst orders getAllGigs by created_at descending.
	NewestFirst bool
	// StoreTimeout bounds every store call; zero means the caller's deadline only.
	StoreTimeout time.Duration
	// Publisher, when set, receives a gig.created event after each insert.
	Publisher EventPublisher
	Metrics   *metrics.Metrics
	Logger    echo.Logger
}

// GigService resolves gig operations against a GigStore.
type GigService struct {
	store repository.GigStore
	opts  Options
}

// NewGigService constructs the service and panics if store is nil.
func NewGigService(store repository.GigStore, opts Options) *GigService {
	if store == nil {
		panic("nil store passed to NewGigService")
	}
	if opts.Logger == nil {
		opts.Logger = log.New("gig-service")
	}
	return &GigService{store: store, opts: opts}
}

// CreateGig persists a new gig built from in and returns it with its
// assigned id and creation time. Any failure to persist is reported as
// ErrActionFailed (or ErrTimeout when the deadline expired); nothing is
// left behind because the insert is a single document write.
func (s *GigService) CreateGig(ctx context.Context, in model.NewGig) (payload *CreateGigPayload, err error) {
	start := time.Now()
	defer func() { s.observe(OpCreateGig, start, err) }()

	g := &model.Gig{
		Title:        in.Title,
		Price:        in.Price,
		Description:  in.Description,
		ContactPhone: in.ContactPhone,
		ContactEmail: in.ContactEmail,
		ContactName:  in.ContactName,
		Location:     s.location(in.Location),
		Category:     in.Category,
	}

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.store.Insert(sctx, g); err != nil {
		s.opts.Logger.Errorf("%s: insert failed: %v", OpCreateGig, err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, classify(err)
		}
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, errors.Join(ErrActionFailed, err)
	}
	if g.ID == "" {
		return nil, ErrActionFailed
	}

	s.publish(ctx, g)
	return &CreateGigPayload{Gig: g}, nil
}

// GetAllGigs pages over every gig without filtering.
func (s *GigService) GetAllGigs(ctx context.Context, page model.Page) (*GigsList, error) {
	q := repository.FindQuery{NewestFirst: s.opts.NewestFirst}
	return s.list(ctx, OpGetAllGigs, q, page)
}

// GetGigsByLocation pages over gigs whose location equals location. An
// empty location applies no filter.
func (s *GigService) GetGigsByLocation(ctx context.Context, page model.Page, location string) (*GigsList, error) {
	q := repository.FindQuery{}
	if location != "" {
		q = q.Where(repository.FieldLocation, s.location(location))
	}
	return s.list(ctx, OpGetGigsByLocation, q, page)
}

// GetGigsByCategory pages over gigs whose category equals category. An
// empty category applies no filter.
func (s *GigService) GetGigsByCategory(ctx context.Context, page model.Page, category string) (*GigsList, error) {
	q := repository.FindQuery{}
	if category != "" {
		q = q.Where(repository.FieldCategory, category)
	}
	return s.list(ctx, OpGetGigsByCategory, q, page)
}

func (s *GigService) list(ctx context.Context, op string, q repository.FindQuery, page model.Page) (out *GigsList, err error) {
	start := time.Now()
	defer func() { s.observe(op, start, err) }()

	if page.Offset < 0 {
		return nil, &ValidationError{Field: "offset", Reason: "must be a non-negative integer"}
	}
	if page.Limit < 0 {
		return nil, &ValidationError{Field: "limit", Reason: "must be a non-negative integer"}
	}
	// a zero limit means "no limit" to the store, so answer it here
	if page.Limit == 0 {
		return &GigsList{Gigs: []*model.Gig{}}, nil
	}
	q.Skip, q.Limit = page.Offset, page.Limit

	sctx, cancel := s.storeContext(ctx)
	defer cancel()
	gigs, err := s.store.Find(sctx, q)
	if err != nil {
		s.opts.Logger.Errorf("%s: find failed: %v", op, err)
		return nil, classify(err)
	}
	if gigs == nil {
		gigs = []*model.Gig{}
	}
	s.opts.Metrics.ObserveListSize(op, len(gigs))
	return &GigsList{Gigs: gigs}, nil
}

// location applies the configured normalization policy.
func (s *GigService) location(v string) string {
	if s.opts.LowercaseLocation {
		return strings.ToLower(v)
	}
	return v
}

func (s *GigService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.StoreTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// publish sends the creation event. Failures are logged and never change
// the outcome of createGig.
func (s *GigService) publish(ctx context.Context, g *model.Gig) {
	if s.opts.Publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.opts.Publisher.PublishGigCreated(pctx, gigCreatedEvent(g)); err != nil {
		s.opts.Logger.Warnf("%s: publish gig.created for %s failed: %v", OpCreateGig, g.ID, err)
	}
}

func (s *GigService) observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = Kind(err)
	}
	s.opts.Metrics.ObserveOperation(op, outcome, time.Since(start))
}
