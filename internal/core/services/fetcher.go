package services

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
)

// FetcherOptions tunes document lookups.
type FetcherOptions struct {
	// Rate limits lookups per second. Zero means unlimited.
	Rate float64

	// Retries is the number of extra attempts after a failed lookup.
	// Zero means each key is looked up exactly once.
	Retries int

	// RetryInterval is the first backoff delay. Defaults to 200ms.
	RetryInterval time.Duration
}

// RecordFetcher looks up the raw documents for a geo key.
// Calls are independent and safe to issue concurrently.
type RecordFetcher struct {
	store         driven.DocumentStore
	limiter       *rate.Limiter
	retries       uint64
	retryInterval time.Duration
}

// NewRecordFetcher creates a fetcher over a document store.
func NewRecordFetcher(store driven.DocumentStore, opts FetcherOptions) *RecordFetcher {
	f := &RecordFetcher{
		store:         store,
		retryInterval: opts.RetryInterval,
	}
	if opts.Rate > 0 {
		burst := int(opts.Rate)
		if burst < 1 {
			burst = 1
		}
		f.limiter = rate.NewLimiter(rate.Limit(opts.Rate), burst)
	}
	if opts.Retries > 0 {
		f.retries = uint64(opts.Retries)
	}
	if f.retryInterval <= 0 {
		f.retryInterval = 200 * time.Millisecond
	}
	return f
}

// Fetch returns every document whose id field equals key.
// No matching document is an empty, successful result.
// Store failures are returned as *domain.FetchError.
func (f *RecordFetcher) Fetch(ctx context.Context, key domain.GeoKey) ([]domain.RawRecord, error) {
	var records []domain.RawRecord

	operation := func() error {
		if f.limiter != nil {
			if err := f.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}
		recs, err := f.store.FetchWhere(ctx, domain.FieldID, key.String())
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		records = recs
		return nil
	}

	if err := backoff.Retry(operation, f.backOff(ctx)); err != nil {
		return nil, &domain.FetchError{Key: key, Err: err}
	}
	return records, nil
}

func (f *RecordFetcher) backOff(ctx context.Context) backoff.BackOffContext {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.retryInterval
	exp.MaxInterval = 10 * f.retryInterval
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, f.retries), ctx)
}
