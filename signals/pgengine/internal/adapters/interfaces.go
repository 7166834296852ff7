package adapters

import "context"

// DBAdapter defines the interface for database operations needed by the signal engine.
type DBAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Begin(ctx context.Context) (TxAdapter, error)
}

// TxAdapter defines the interface for operations bound to one database transaction.
// Exec and Query run inside the transaction; the transaction ends with exactly one
// call to either Commit or Rollback.
type TxAdapter interface {
	Query(ctx context.Context, query string) (DBRows, error)
	Exec(ctx context.Context, query string) (DBResult, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows.
type DBRows interface {
	Next() bool
	Scan(dest ...any) error
	Close() error
}

// DBResult defines the interface for execution results.
type DBResult interface {
	RowsAffected() (int64, error)
}
