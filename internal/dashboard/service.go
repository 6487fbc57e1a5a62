package dashboard

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/kofalt/go-memoize"
	"golang.org/x/sync/errgroup"

	"github.com/rm-hull/inventory-console/internal/inventory"
)

const DefaultCacheTTL = 5 * time.Minute

const summaryKey = "summary"

// Service serves dashboard summaries, fetching every resource kind at most
// once per cache period.
type Service struct {
	client *inventory.Client
	cache  *memoize.Memoizer
}

func NewService(client *inventory.Client, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{
		client: client,
		cache:  memoize.NewMemoizer(ttl, 2*ttl),
	}
}

// Summary returns the cached summary, computing it when absent or expired.
// Concurrent callers share a single computation.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	summary, err, _ := memoize.Call(s.cache, summaryKey, func() (*Summary, error) {
		snap, err := s.fetch(ctx)
		if err != nil {
			return nil, err
		}
		return Derive(snap), nil
	})
	return summary, err
}

// Refresh discards the cached summary and computes a new one.
func (s *Service) Refresh(ctx context.Context) (*Summary, error) {
	s.Invalidate()
	return s.Summary(ctx)
}

func (s *Service) Invalidate() {
	s.cache.Storage.Delete(summaryKey)
}

func (s *Service) fetch(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Products, err = s.client.Products.List(ctx)
		return errors.Wrap(err, "failed to fetch products")
	})
	g.Go(func() (err error) {
		snap.Categories, err = s.client.Categories.List(ctx)
		return errors.Wrap(err, "failed to fetch categories")
	})
	g.Go(func() (err error) {
		snap.Vendors, err = s.client.Vendors.List(ctx)
		return errors.Wrap(err, "failed to fetch vendors")
	})
	g.Go(func() (err error) {
		snap.Warehouses, err = s.client.Warehouses.List(ctx)
		return errors.Wrap(err, "failed to fetch warehouses")
	})
	g.Go(func() (err error) {
		snap.Units, err = s.client.Units.List(ctx)
		return errors.Wrap(err, "failed to fetch units")
	})

	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}
