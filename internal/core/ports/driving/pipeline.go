package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/jelly-cli/internal/core/domain"
)

// RegionLoader loads the jellies visible in a map region.
type RegionLoader interface {
	// Load runs one region query to completion and returns its summary.
	// Starting a new load supersedes any load still in progress.
	Load(ctx context.Context, region domain.Region) (*RunSummary, error)

	// Status returns the state of the current region query.
	Status() Status
}

// Phase is the lifecycle state of a region query.
type Phase string

// Region query phases.
const (
	PhaseIdle       Phase = "idle"
	PhaseCollecting Phase = "collecting"
	PhaseFetching   Phase = "fetching"
	PhaseDraining   Phase = "draining"
)

// Status represents the current state of the region pipeline.
type Status struct {
	// RunID identifies the current or last run.
	RunID uint64

	// Region is the region being loaded.
	Region domain.Region

	// Phase is the lifecycle state.
	Phase Phase

	// KeysCollected is the number of unique keys seen so far.
	KeysCollected int

	// RecordsPersisted is the number of jellies stored so far.
	RecordsPersisted int

	// ErrorCount is the number of per-key and per-image errors.
	ErrorCount int
}

// RunSummary describes a completed region query.
type RunSummary struct {
	// RunID identifies the run.
	RunID uint64

	// Region is the region that was loaded.
	Region domain.Region

	// KeysCollected is the number of unique keys reported by the index.
	KeysCollected int

	// DuplicateKeys is the number of repeated keys that were skipped.
	DuplicateKeys int

	// RecordsFetched is the number of raw documents returned by the store.
	RecordsFetched int

	// RecordsPersisted is the number of jellies stored.
	RecordsPersisted int

	// ValidationErrors is the number of raw documents rejected.
	ValidationErrors int

	// FetchErrors is the number of keys whose lookup failed.
	FetchErrors int

	// ImagesDownloaded is the number of image blobs attached.
	ImagesDownloaded int

	// ImageErrors is the number of failed listings and downloads.
	ImageErrors int

	// Duration is the wall time of the run.
	Duration time.Duration
}
