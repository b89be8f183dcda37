// Package sqlite provides the SQLite-backed JellyStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Jellies live in the jellies table; their images live in jelly_images and are
// removed with the owning jelly.
//
// # Data Location
//
// By default, the database is stored at ~/.jelly/data/jellies.db
//
// # Thread Safety
//
// All operations are thread-safe. Writers are serialised by the store and
// readers rely on SQLite WAL mode.
package sqlite
