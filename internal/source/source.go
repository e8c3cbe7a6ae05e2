// Package source fetches job posting batches from external job board APIs.
package source

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jobscout/jobscout-cli/internal/model"
)

// Query describes one search forwarded to every source site.
type Query struct {
	Term          string
	Location      string
	Country       string
	ResultsWanted int
	HoursOld      int
	RemoteOnly    bool
}

// Source returns one batch of postings for a single site. A failed fetch is
// fatal to the run; there is no partial or streaming delivery.
type Source interface {
	Fetch(ctx context.Context, site string, q Query) ([]model.Posting, error)
}

// FetchAll queries every site concurrently and merges the batches. The merge
// preserves site order so identical inputs produce identical batches. Any
// site failure fails the whole fetch.
func FetchAll(ctx context.Context, src Source, sites []string, q Query) ([]model.Posting, error) {
	batches := make([][]model.Posting, len(sites))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for i, site := range sites {
		i, site := i, site
		g.Go(func() error {
			batch, err := src.Fetch(gCtx, site, q)
			if err != nil {
				return eris.Wrapf(err, "source: fetch %s", site)
			}
			zap.L().Debug("source: site fetched",
				zap.String("site", site),
				zap.Int("count", len(batch)),
			)
			mu.Lock()
			batches[i] = batch
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []model.Posting
	for _, b := range batches {
		merged = append(merged, b...)
	}
	return merged, nil
}

// Static is a fixed in-memory source, used in tests and dry runs.
type Static struct {
	Postings []model.Posting
	Err      error
}

func (s *Static) Fetch(_ context.Context, site string, _ Query) ([]model.Posting, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var batch []model.Posting
	for _, p := range s.Postings {
		if p.Site == "" || p.Site == site {
			batch = append(batch, p)
		}
	}
	return batch, nil
}
