package postgreswrapper

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/example/shell/config"
	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine"
)

// Adapter type constants
const (
	typePGXPool = "pgx.pool"
	typeSQLDB   = "sql.db"
	typeSQLXDB  = "sqlx.db"
)

// Wrapper interface to abstract over different adapter types
type Wrapper interface {
	GetDispatcher() *pgengine.Dispatcher
	Close()
}

// PGXPoolWrapper wraps pgxpool-based testing
type PGXPoolWrapper struct {
	pool       *pgxpool.Pool
	dispatcher *pgengine.Dispatcher
}

func (w *PGXPoolWrapper) GetDispatcher() *pgengine.Dispatcher {
	return w.dispatcher
}

func (w *PGXPoolWrapper) Close() {
	w.pool.Close()
}

// SQLDBWrapper wraps sql.DB-based testing
type SQLDBWrapper struct {
	db         *sql.DB
	dispatcher *pgengine.Dispatcher
}

func (w *SQLDBWrapper) GetDispatcher() *pgengine.Dispatcher {
	return w.dispatcher
}

func (w *SQLDBWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// SQLXWrapper wraps sqlx.DB-based testing
type SQLXWrapper struct {
	db         *sqlx.DB
	dispatcher *pgengine.Dispatcher
}

func (w *SQLXWrapper) GetDispatcher() *pgengine.Dispatcher {
	return w.dispatcher
}

func (w *SQLXWrapper) Close() {
	_ = w.db.Close() // ignore error
}

// CreateWrapperWithTestConfig creates the appropriate wrapper based on the environment variable.
func CreateWrapperWithTestConfig(t testing.TB, registry *signals.Registry, options ...pgengine.Option) Wrapper {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")

		dispatcher, err := pgengine.NewDispatcherFromPGXPool(connPool, registry, options...)
		assert.NoError(t, err, "error creating dispatcher")

		return &PGXPoolWrapper{pool: connPool, dispatcher: dispatcher}

	case typeSQLDB:
		db := config.PostgresSQLDBConfig()

		dispatcher, err := pgengine.NewDispatcherFromSQLDB(db, registry, options...)
		assert.NoError(t, err, "error creating dispatcher")

		return &SQLDBWrapper{db: db, dispatcher: dispatcher}

	case typeSQLXDB:
		db := config.PostgresSQLXConfig()

		dispatcher, err := pgengine.NewDispatcherFromSQLX(db, registry, options...)
		assert.NoError(t, err, "error creating dispatcher")

		return &SQLXWrapper{db: db, dispatcher: dispatcher}

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// TryCreateDispatcherWithTableName tries to create a dispatcher with the given journal
// table name and returns the error (for testing error cases).
func TryCreateDispatcherWithTableName(t testing.TB, registry *signals.Registry, tableName string) error {
	adapterTypeFromEnv := strings.ToLower(os.Getenv("ADAPTER_TYPE"))

	options := []pgengine.Option{pgengine.WithTableName(tableName)}

	switch adapterTypeFromEnv {
	case typePGXPool, "":
		connPool, err := pgxpool.NewWithConfig(context.Background(), config.PostgresPGXPoolConfig())
		assert.NoError(t, err, "error connecting to DB pool in test setup")
		defer connPool.Close()

		_, err = pgengine.NewDispatcherFromPGXPool(connPool, registry, options...)
		return err

	case typeSQLDB:
		db := config.PostgresSQLDBConfig()
		defer func(db *sql.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := pgengine.NewDispatcherFromSQLDB(db, registry, options...)
		return err

	case typeSQLXDB:
		db := config.PostgresSQLXConfig()
		defer func(db *sqlx.DB) {
			_ = db.Close() // makes no sense to handle this
		}(db)

		_, err := pgengine.NewDispatcherFromSQLX(db, registry, options...)
		return err

	default: // neither one of the known types nor empty
		panic(fmt.Sprintf("unsupported wrapper type from env: %s", adapterTypeFromEnv))
	}
}

// CleanUp truncates the journal and read model tables for the given wrapper.
func CleanUp(t testing.TB, wrapper Wrapper) {
	execStatement(t, wrapper, "TRUNCATE TABLE signal_deliveries RESTART IDENTITY")
	execStatement(t, wrapper, "TRUNCATE TABLE user_profiles")
}

// CountJournalRows counts the rows in the signal_deliveries table.
func CountJournalRows(t testing.TB, wrapper Wrapper) int {
	return queryCount(t, wrapper, `SELECT count(*) FROM signal_deliveries`)
}

// CountProfileRows counts the rows in the user_profiles table.
func CountProfileRows(t testing.TB, wrapper Wrapper) int {
	return queryCount(t, wrapper, `SELECT count(*) FROM user_profiles`)
}

// GetProfileEmail reads the email column for a user from the user_profiles table.
func GetProfileEmail(t testing.TB, wrapper Wrapper, userID string) string {
	query := fmt.Sprintf(`SELECT email FROM user_profiles WHERE user_id = '%s'`, userID)

	var email string
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query)
		err = row.Scan(&email)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&email)

	case *SQLXWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&email)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error reading the user_profiles table")

	return email
}

func queryCount(t testing.TB, wrapper Wrapper, query string) int {
	var cnt int
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		row := w.pool.QueryRow(context.Background(), query)
		err = row.Scan(&cnt)

	case *SQLDBWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	case *SQLXWrapper:
		row := w.db.QueryRow(query)
		err = row.Scan(&cnt)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error counting table rows")

	return cnt
}

func execStatement(t testing.TB, wrapper Wrapper, statement string) {
	var err error

	switch w := wrapper.(type) {
	case *PGXPoolWrapper:
		_, err = w.pool.Exec(context.Background(), statement)

	case *SQLDBWrapper:
		_, err = w.db.Exec(statement)

	case *SQLXWrapper:
		_, err = w.db.Exec(statement)

	default:
		panic(fmt.Sprintf("unsupported wrapper type: %T", w))
	}

	assert.NoError(t, err, "error executing test setup statement")
}
