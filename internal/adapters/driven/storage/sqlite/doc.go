// Package sqlite provides the SQLite-backed implementation of driven.TaskStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Rows are mapped with jmoiron/sqlx.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.todo/todo.db. The special path
// ":memory:" opens a private in-memory database.
//
// # Thread Safety
//
// All operations are safe for concurrent use. Writes (create, update, delete and
// the write half of upsert) are serialised by one mutex held by the Store.
// Reads never take that mutex; WAL mode lets them run alongside a writer.
package sqlite
