package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driven"
	"github.com/custodia-labs/jelly-cli/internal/core/ports/driving"
	"github.com/custodia-labs/jelly-cli/internal/logger"
)

// Run outcomes recorded by metrics.
const (
	outcomeOK         = "ok"
	outcomeSuperseded = "superseded"
	outcomeCancelled  = "cancelled"
	outcomeIndexError = "index_error"
)

// Verify interface compliance.
var _ driving.RegionLoader = (*PipelineCoordinator)(nil)

// PipelineDeps holds the collaborators of a PipelineCoordinator.
// Images, Notifier and Metrics are optional.
type PipelineDeps struct {
	Collector *GeoKeyCollector
	Fetcher   *RecordFetcher
	Validator *RecordValidator
	Images    *ImageResolver
	Store     driven.JellyStore
	Tags      *TagRegistry
	Notifier  driven.Notifier
	Metrics   driven.PipelineMetrics

	// MaxConcurrency caps in-flight key tasks. Zero means unbounded.
	MaxConcurrency int
}

// PipelineCoordinator runs region queries: it collects keys, fetches and
// validates their documents, persists the results and resolves images.
// Only one run is live at a time; starting a run supersedes the previous one.
type PipelineCoordinator struct {
	deps PipelineDeps

	// startMu serialises Start so supersede and tag reset happen in order.
	startMu sync.Mutex

	mu      sync.Mutex
	current *Run
	nextID  uint64
}

// NewPipelineCoordinator creates a coordinator.
func NewPipelineCoordinator(deps PipelineDeps) *PipelineCoordinator {
	if deps.Validator == nil {
		deps.Validator = NewRecordValidator()
	}
	if deps.Tags == nil {
		deps.Tags = NewTagRegistry()
	}
	return &PipelineCoordinator{deps: deps}
}

// Tags returns the registry shared by every run.
func (c *PipelineCoordinator) Tags() *TagRegistry {
	return c.deps.Tags
}

// Run is one region query.
type Run struct {
	id      uint64
	region  domain.Region
	started time.Time

	ctx    context.Context
	cancel context.CancelCauseFunc

	// barrier gates every write. Writers hold it shared; stop takes it
	// exclusively, so once stop returns no write from this run is in flight.
	barrier sync.RWMutex
	stopped bool

	phaseMu sync.Mutex
	phase   driving.Phase

	keys             atomic.Int64
	duplicates       atomic.Int64
	fetched          atomic.Int64
	persisted        atomic.Int64
	validationErrors atomic.Int64
	fetchErrors      atomic.Int64
	images           atomic.Int64
	imageErrors      atomic.Int64

	done    chan struct{}
	summary *driving.RunSummary
	err     error
}

// ID returns the run identifier.
func (r *Run) ID() uint64 {
	return r.id
}

// Done is closed when the run reaches a terminal state.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes or ctx is done.
// A superseded run returns domain.ErrRunSuperseded alongside its partial summary.
func (r *Run) Wait(ctx context.Context) (*driving.RunSummary, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.done:
		return r.summary, r.err
	}
}

// guard runs fn unless the run has been stopped.
func (r *Run) guard(fn func() error) error {
	r.barrier.RLock()
	defer r.barrier.RUnlock()
	if r.stopped {
		return domain.ErrRunSuperseded
	}
	return fn()
}

// stop cancels the run scope and waits for in-flight writes to finish.
func (r *Run) stop(cause error) {
	r.cancel(cause)
	r.barrier.Lock()
	r.stopped = true
	r.barrier.Unlock()
}

func (r *Run) setPhase(p driving.Phase) {
	r.phaseMu.Lock()
	r.phase = p
	r.phaseMu.Unlock()
}

func (r *Run) status() driving.Status {
	r.phaseMu.Lock()
	phase := r.phase
	r.phaseMu.Unlock()

	return driving.Status{
		RunID:            r.id,
		Region:           r.region,
		Phase:            phase,
		KeysCollected:    int(r.keys.Load()),
		RecordsPersisted: int(r.persisted.Load()),
		ErrorCount: int(r.fetchErrors.Load() + r.validationErrors.Load() +
			r.imageErrors.Load()),
	}
}

func (r *Run) buildSummary() *driving.RunSummary {
	return &driving.RunSummary{
		RunID:            r.id,
		Region:           r.region,
		KeysCollected:    int(r.keys.Load()),
		DuplicateKeys:    int(r.duplicates.Load()),
		RecordsFetched:   int(r.fetched.Load()),
		RecordsPersisted: int(r.persisted.Load()),
		ValidationErrors: int(r.validationErrors.Load()),
		FetchErrors:      int(r.fetchErrors.Load()),
		ImagesDownloaded: int(r.images.Load()),
		ImageErrors:      int(r.imageErrors.Load()),
		Duration:         time.Since(r.started),
	}
}

// Start begins a region query and returns immediately.
// Any previous run is superseded: its scope is cancelled and Start waits
// until it can no longer write before resetting the tag registry.
func (c *PipelineCoordinator) Start(ctx context.Context, region domain.Region) (*Run, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}

	c.startMu.Lock()
	defer c.startMu.Unlock()

	c.mu.Lock()
	prev := c.current
	c.nextID++
	runCtx, cancel := context.WithCancelCause(ctx)
	run := &Run{
		id:      c.nextID,
		region:  region,
		started: time.Now(),
		ctx:     runCtx,
		cancel:  cancel,
		phase:   driving.PhaseCollecting,
		done:    make(chan struct{}),
	}
	c.current = run
	c.mu.Unlock()

	if prev != nil {
		logger.Debug("Superseding run %d", prev.id)
		prev.stop(domain.ErrRunSuperseded)
	}
	c.deps.Tags.Reset()

	logger.Section(fmt.Sprintf("Run %d: %s", run.id, region))
	go c.execute(run)

	return run, nil
}

// Load runs a region query to completion.
func (c *PipelineCoordinator) Load(ctx context.Context, region domain.Region) (*driving.RunSummary, error) {
	run, err := c.Start(ctx, region)
	if err != nil {
		return nil, err
	}
	return run.Wait(ctx)
}

// Cancel stops the current run, if any.
func (c *PipelineCoordinator) Cancel() {
	c.mu.Lock()
	run := c.current
	c.mu.Unlock()

	if run != nil {
		run.stop(context.Canceled)
	}
}

// Status returns the state of the current or last run.
func (c *PipelineCoordinator) Status() driving.Status {
	c.mu.Lock()
	run := c.current
	c.mu.Unlock()

	if run == nil {
		return driving.Status{Phase: driving.PhaseIdle}
	}
	return run.status()
}

// execute drives one run through collecting, fetching and draining.
func (c *PipelineCoordinator) execute(run *Run) {
	defer close(run.done)
	defer run.setPhase(driving.PhaseIdle)

	stream := c.deps.Collector.Collect(run.ctx, run.region)

	g, gctx := errgroup.WithContext(run.ctx)
	if c.deps.MaxConcurrency > 0 {
		g.SetLimit(c.deps.MaxConcurrency)
	}

	for key := range stream.Keys {
		if run.keys.Add(1) == 1 {
			run.setPhase(driving.PhaseFetching)
		}
		g.Go(func() error {
			c.processKey(gctx, run, key)
			return nil
		})
	}

	readyErr := <-stream.Ready
	run.duplicates.Store(int64(stream.Duplicates()))
	run.setPhase(driving.PhaseDraining)

	var indexErr *domain.IndexConnectionError
	if errors.As(readyErr, &indexErr) {
		logger.Error("Run %d: %v", run.id, readyErr)
		run.cancel(readyErr)
	}

	_ = g.Wait()

	run.summary = run.buildSummary()
	run.err = c.runError(run, readyErr)

	outcome := outcomeOK
	switch {
	case errors.Is(run.err, domain.ErrRunSuperseded):
		outcome = outcomeSuperseded
	case indexErr != nil:
		outcome = outcomeIndexError
	case run.err != nil:
		outcome = outcomeCancelled
	}
	if c.deps.Metrics != nil {
		c.deps.Metrics.ObserveRun(run.summary.Duration, outcome)
	}

	logger.Info("Run %d %s: %d keys, %d persisted, %d rejected, %d fetch errors",
		run.id, outcome, run.summary.KeysCollected, run.summary.RecordsPersisted,
		run.summary.ValidationErrors, run.summary.FetchErrors)
}

// runError decides what Wait reports for a finished run.
func (c *PipelineCoordinator) runError(run *Run, readyErr error) error {
	if cause := context.Cause(run.ctx); errors.Is(cause, domain.ErrRunSuperseded) {
		return domain.ErrRunSuperseded
	}
	if readyErr != nil {
		var indexErr *domain.IndexConnectionError
		if errors.As(readyErr, &indexErr) {
			return readyErr
		}
		if cause := context.Cause(run.ctx); cause != nil {
			return cause
		}
		return readyErr
	}
	if cause := context.Cause(run.ctx); cause != nil {
		return cause
	}
	return nil
}

// processKey handles one key: fetch, validate, persist, notify, images.
// Failures are logged and counted; they never affect other keys.
func (c *PipelineCoordinator) processKey(ctx context.Context, run *Run, key domain.GeoKey) {
	records, err := c.deps.Fetcher.Fetch(ctx, key)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		run.fetchErrors.Add(1)
		if c.deps.Metrics != nil {
			c.deps.Metrics.FetchFailed()
		}
		logger.Warn("Skipping key %s: %v", key, err)
		return
	}
	run.fetched.Add(int64(len(records)))
	if len(records) == 0 {
		logger.Debug("No documents for key %s", key)
		return
	}

	for _, raw := range records {
		jelly, err := c.deps.Validator.Validate(raw)
		if err != nil {
			run.validationErrors.Add(1)
			if ve, ok := domain.AsValidationError(err); ok && c.deps.Metrics != nil {
				c.deps.Metrics.RecordRejected(ve.Field)
			}
			logger.Warn("Dropping document for key %s: %v", key, err)
			continue
		}

		if err := c.persist(ctx, run, jelly); err != nil {
			if errors.Is(err, domain.ErrRunSuperseded) || ctx.Err() != nil {
				return
			}
			logger.Error("Persist jelly %s: %v", jelly.ID, err)
			continue
		}
		c.attachImages(ctx, run, jelly)
	}
}

// persist stores a jelly, registers its tags and notifies listeners behind
// the write barrier, so a superseded run emits nothing once the next run
// has reset the registry.
func (c *PipelineCoordinator) persist(ctx context.Context, run *Run, jelly *domain.Jelly) error {
	return run.guard(func() error {
		if err := c.deps.Store.Create(ctx, jelly); err != nil {
			return fmt.Errorf("create: %w", err)
		}
		c.deps.Tags.AddAll(jelly.Tags)
		run.persisted.Add(1)
		if c.deps.Metrics != nil {
			c.deps.Metrics.RecordPersisted()
		}
		logger.Debug("Persisted jelly %s (%s)", jelly.ID, jelly.Title)
		c.notify(ctx, jelly)
		return nil
	})
}

// notify sends record-added then tag-added for a persisted jelly.
func (c *PipelineCoordinator) notify(ctx context.Context, jelly *domain.Jelly) {
	if c.deps.Notifier == nil {
		return
	}
	events := []domain.Event{
		domain.NewEvent(domain.EventRecordAdded, jelly.ID, nil),
		domain.NewEvent(domain.EventTagAdded, jelly.ID, jelly.Tags),
	}
	for _, event := range events {
		if err := c.deps.Notifier.Notify(ctx, event); err != nil {
			logger.Warn("Notify %s for %s: %v", event.Name, jelly.ID, err)
		}
	}
}

// attachImages resolves a jelly's images and appends the successful ones.
func (c *PipelineCoordinator) attachImages(ctx context.Context, run *Run, jelly *domain.Jelly) {
	if c.deps.Images == nil || jelly.ReferencePath == "" {
		return
	}

	var items []domain.StorageItem
	for item, err := range c.deps.Images.Resolve(ctx, jelly.ReferencePath) {
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			run.imageErrors.Add(1)
			logger.Warn("Jelly %s: %v", jelly.ID, err)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return
	}

	err := run.guard(func() error {
		return c.deps.Store.AppendImages(ctx, jelly.ID, items)
	})
	if err != nil {
		if !errors.Is(err, domain.ErrRunSuperseded) && ctx.Err() == nil {
			run.imageErrors.Add(1)
			logger.Error("Append images to %s: %v", jelly.ID, err)
		}
		return
	}
	run.images.Add(int64(len(items)))
}
