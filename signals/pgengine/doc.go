// Package pgengine binds signal dispatch to PostgreSQL transactions.
//
// A Dispatcher runs a unit of work inside one database transaction. Signals
// raised through the transactional Scope are dispatched synchronously on the
// caller's goroutine, every delivery is journaled inside the transaction, and
// receivers can perform their own writes through the same transaction. If the
// unit of work fails, the transaction is rolled back and the journaled
// deliveries together with all receiver side effects are undone as one unit.
//
// The engine works with pgxpool.Pool, sql.DB, and sqlx.DB connections through
// internal adapters; choose the constructor matching your connection type.
//
// The journal table is expected to exist with this shape (default name
// "signal_deliveries", configurable via WithTableName):
//
//	CREATE TABLE signal_deliveries (
//	    delivery_id BIGSERIAL PRIMARY KEY,
//	    signal_name TEXT        NOT NULL,
//	    receiver_id UUID        NOT NULL,
//	    occurred_at TIMESTAMPTZ NOT NULL,
//	    payload     JSONB       NOT NULL,
//	    metadata    JSONB       NOT NULL
//	);
//
// Common usage pattern:
//
//	dispatcher, _ := pgengine.NewDispatcherFromPGXPool(pool, registry)
//
//	err := dispatcher.Execute(ctx, func(ctx context.Context, scope *pgengine.Scope) error {
//		notification, _ := signals.BuildNotificationWithEmptyMetadata(
//			"user_signed_up", time.Now(), payloadJSON)
//
//		if _, sendErr := scope.Send(ctx, notification); sendErr != nil {
//			return sendErr
//		}
//
//		return nil // commit; returning an error rolls everything back
//	})
package pgengine
