package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// errSequenceConsumed is yielded when a resolved sequence is iterated twice.
var errSequenceConsumed = errors.New("image sequence already consumed")

// ImageResolverOptions tunes image resolution.
type ImageResolverOptions struct {
	// MaxBytes caps each download. Defaults to domain.DefaultImageMaxBytes.
	MaxBytes int64

	// CacheTTL keeps downloaded blobs for reuse. Zero disables the cache.
	CacheTTL time.Duration
}

// ImageResolver downloads the images stored under a jelly's reference path.
type ImageResolver struct {
	blobs    driven.BlobStore
	metrics  driven.PipelineMetrics
	maxBytes int64
	cache    *cache.Cache
}

// NewImageResolver creates a resolver. metrics may be nil.
func NewImageResolver(blobs driven.BlobStore, metrics driven.PipelineMetrics, opts ImageResolverOptions) *ImageResolver {
	r := &ImageResolver{
		blobs:    blobs,
		metrics:  metrics,
		maxBytes: opts.MaxBytes,
	}
	if r.maxBytes <= 0 {
		r.maxBytes = domain.DefaultImageMaxBytes
	}
	if opts.CacheTTL > 0 {
		r.cache = cache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}
	return r
}

type imageResult struct {
	item domain.StorageItem
	err  error
}

// Resolve lists every blob under path and downloads them concurrently.
//
// The sequence yields one entry per blob in completion order: the item, or
// an *domain.ImageDownloadError for that blob alone. If the listing fails
// the sequence yields a single *domain.ImageListError and ends. Breaking
// out of the loop cancels outstanding downloads. The sequence is one-shot.
func (r *ImageResolver) Resolve(ctx context.Context, path string) iter.Seq2[domain.StorageItem, error] {
	var used atomic.Bool

	return func(yield func(domain.StorageItem, error) bool) {
		if used.Swap(true) {
			yield(domain.StorageItem{}, fmt.Errorf("%w: %s", errSequenceConsumed, path))
			return
		}

		refs, err := r.blobs.List(ctx, path)
		if err != nil {
			if r.metrics != nil {
				r.metrics.ImageFailed("list")
			}
			yield(domain.StorageItem{}, &domain.ImageListError{Path: path, Err: err})
			return
		}
		if len(refs) == 0 {
			return
		}

		dctx, cancel := context.WithCancel(ctx)
		defer cancel()

		// Buffered so abandoned downloads never block.
		results := make(chan imageResult, len(refs))
		var wg sync.WaitGroup
		for _, ref := range refs {
			wg.Add(1)
			go func(ref domain.ItemRef) {
				defer wg.Done()
				item, err := r.download(dctx, ref)
				results <- imageResult{item: item, err: err}
			}(ref)
		}
		go func() {
			wg.Wait()
			close(results)
		}()

		for res := range results {
			if !yield(res.item, res.err) {
				return
			}
		}
	}
}

// download fetches one blob, consulting the cache first.
func (r *ImageResolver) download(ctx context.Context, ref domain.ItemRef) (domain.StorageItem, error) {
	if r.cache != nil {
		if cached, found := r.cache.Get(ref.Path); found {
			if data, ok := cached.([]byte); ok {
				logger.Debug("Image cache hit: %s", ref.Path)
				return domain.StorageItem{Path: ref.Path, Data: data}, nil
			}
		}
	}

	if ref.Size > r.maxBytes {
		return r.fail(ref, fmt.Errorf("%w: %d > %d bytes", domain.ErrImageTooLarge, ref.Size, r.maxBytes))
	}

	data, err := r.blobs.Download(ctx, ref, r.maxBytes)
	if err != nil {
		return r.fail(ref, err)
	}

	if r.cache != nil {
		r.cache.Set(ref.Path, data, cache.DefaultExpiration)
	}
	if r.metrics != nil {
		r.metrics.ImageDownloaded(len(data))
	}
	return domain.StorageItem{Path: ref.Path, Data: data}, nil
}

func (r *ImageResolver) fail(ref domain.ItemRef, err error) (domain.StorageItem, error) {
	if r.metrics != nil {
		r.metrics.ImageFailed("download")
	}
	return domain.StorageItem{Path: ref.Path}, &domain.ImageDownloadError{Path: ref.Path, Err: err}
}
