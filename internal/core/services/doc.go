// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The region pipeline is split into small collaborators:
//
//	GeoKeyCollector    keys inside a region, then a ready signal
//	RecordFetcher      raw documents for one key
//	RecordValidator    raw document to Jelly
//	TagRegistry        tags seen during the current run
//	ImageResolver      blobs under a jelly's reference path
//	PipelineCoordinator runs them per region query
//
// Services are pure Go with no CGO.
package services
