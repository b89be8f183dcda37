package driven

import "time"

// PipelineMetrics records pipeline counters.
// Optional: the coordinator skips recording when nil.
type PipelineMetrics interface {
	// KeyCollected counts a key reported by the index.
	KeyCollected()

	// FetchFailed counts a per-key store failure.
	FetchFailed()

	// RecordRejected counts a validation failure for a field.
	RecordRejected(field string)

	// RecordPersisted counts a stored jelly.
	RecordPersisted()

	// ImageDownloaded counts a downloaded blob and its size.
	ImageDownloaded(bytes int)

	// ImageFailed counts an image error; kind is "list" or "download".
	ImageFailed(kind string)

	// ObserveRun records the duration and outcome of a region query.
	ObserveRun(duration time.Duration, outcome string)
}
