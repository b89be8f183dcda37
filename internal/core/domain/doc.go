// Package domain defines the core business entities for the jelly loader.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Region: A map viewport (center + span)
//   - GeoKey: An index key correlating a location to a document
//   - RawRecord: An unvalidated field mapping from the document store
//   - Jelly: A validated, normalised entity ready for rendering
//   - StorageItem: A downloaded image blob
//   - Event: A notification for the rendering layer
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
