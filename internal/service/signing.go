package service

import (
	"context"
	"time"

	"github.com/selfhydro/selfhydro-api/internal/domain"
	"github.com/selfhydro/selfhydro-api/internal/metrics"
	"github.com/selfhydro/selfhydro-api/internal/storage"
	"golang.org/x/sync/errgroup"
)

// DefaultSignWorkers caps concurrent signing calls per batch.
const DefaultSignWorkers = 32

// SignRequest asks for one signed URL.
type SignRequest struct {
	Key       string
	Transform domain.Transform
}

// SignResult is the outcome of one SignRequest. Exactly one of URL and Err is set.
type SignResult struct {
	URL string
	Err error
}

// Signer generates batches of signed URLs with bounded fan-out.
type Signer struct {
	store      storage.ObjectStore
	expiry     time.Duration
	maxWorkers int
	metrics    *metrics.Metrics
}

func NewSigner(store storage.ObjectStore, expiry time.Duration, maxWorkers int, m *metrics.Metrics) *Signer {
	if maxWorkers <= 0 {
		maxWorkers = DefaultSignWorkers
	}
	return &Signer{store: store, expiry: expiry, maxWorkers: maxWorkers, metrics: m}
}

// SignAll signs every request using at most min(maxWorkers, len(reqs))
// concurrent calls. results[i] always belongs to reqs[i]; a failed request
// does not stop the others.
func (s *Signer) SignAll(ctx context.Context, reqs []SignRequest) []SignResult {
	results := make([]SignResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(min(s.maxWorkers, len(reqs)))
	for i, req := range reqs {
		g.Go(func() error {
			u, err := s.store.Sign(ctx, req.Key, storage.SignOptions{
				Expiry:    s.expiry,
				Transform: req.Transform,
			})
			if err != nil {
				results[i] = SignResult{Err: err}
			} else {
				results[i] = SignResult{URL: u}
			}
			s.metrics.RecordSign(err == nil)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
