// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - GeoIndex: Streams keys inside a region (Firestore geohash layout)
//   - DocumentStore: Looks up raw jelly documents (Firestore)
//   - JellyStore: Normalised jelly persistence (SQLite)
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - BlobStore: Image storage (MinIO/S3). Without it, jellies keep empty images.
//   - Notifier: Event sink (NATS or in-process). Without it, events are dropped.
//   - PipelineMetrics: Prometheus counters. Without it, nothing is recorded.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
