package signals

import (
	"context"
	"errors"
)

var ErrNoScopeInContext = errors.New("no transactional scope in context")

// Scope is the transactional scope a notification is raised in.
//
// Engines (e.g., the pgengine package) implement Scope on top of a database
// transaction: sends are journaled inside the transaction and receivers can
// perform their own writes through Exec, so that everything commits or rolls
// back as one unit of work.
type Scope interface {
	// Send dispatches a notification through the scope, journaling every delivery
	// inside the enclosing transaction.
	Send(ctx context.Context, notification Notification) (Deliveries, error)

	// SendRobust dispatches like Send but always invokes every receiver,
	// collecting receiver errors.
	SendRobust(ctx context.Context, notification Notification) (Deliveries, error)

	// Exec executes a statement inside the enclosing transaction and returns
	// the number of rows affected.
	Exec(ctx context.Context, sqlStatement string) (int64, error)
}

// contextKey is a private type to prevent context key collisions.
type contextKey string

// scopeKey is the context key used to carry the enclosing transactional scope.
const scopeKey contextKey = "signals.transactional_scope"

// WithScope returns a context carrying the given transactional scope.
//
// Engines call this before running a unit of work so that receivers invoked
// during dispatch can participate in the enclosing transaction.
//
// Example usage:
//
//	registry.Connect("user_signed_up", func(ctx context.Context, n signals.Notification) error {
//		scope, ok := signals.ScopeFrom(ctx)
//		if !ok {
//			return signals.ErrNoScopeInContext
//		}
//		_, err := scope.Exec(ctx, insertProfileStatement)
//		return err
//	})
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey, scope)
}

// ScopeFrom extracts the enclosing transactional scope from the context.
// The second return value reports whether a scope is present; a notification
// raised outside any transactional unit of work carries none.
func ScopeFrom(ctx context.Context) (Scope, bool) {
	scope, ok := ctx.Value(scopeKey).(Scope)
	return scope, ok
}
