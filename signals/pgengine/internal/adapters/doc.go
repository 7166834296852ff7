// Package adapters provides database adapter implementations for the PostgreSQL signal engine.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgxpool.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, allowing the signal engine to work seamlessly with any
// supported database connection type.
//
// On top of plain query execution, the adapters expose transaction handling (Begin,
// Commit, Rollback) behind the TxAdapter interface, which the engine uses to bind
// signal dispatch and receiver side effects to a single unit of work.
package adapters
