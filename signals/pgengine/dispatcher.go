package pgengine

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine/internal/adapters"
)

const (
	defaultJournalTableName     = "signal_deliveries"
	logMsgBeginTxFailed         = "failed to begin transaction"
	logMsgCommitTxFailed        = "failed to commit transaction"
	logMsgRollbackTxFailed      = "failed to roll back transaction"
	logMsgUnitOfWorkFailed      = "unit of work failed, transaction rolled back"
	logMsgUnitOfWorkCommitted   = "unit of work committed"
	logMsgJournalInsertFailed   = "failed to journal signal deliveries"
	logMsgBuildInsertFailed     = "failed to build journal insert query"
	logMsgBuildSelectFailed     = "failed to build journal select query"
	logMsgDBQueryFailed         = "database query execution failed"
	logMsgDBExecFailed          = "database execution failed"
	logMsgCloseRowsFailed       = "failed to close database rows"
	logMsgScanRowFailed         = "failed to scan database row"
	logMsgRowsAffectedFailed    = "failed to get rows affected count"
	logMsgSQLExecuted           = "executed sql for: "
	logMsgOperation             = "signal engine operation: "
	logAttrError                = "error"
	logAttrQuery                = "query"
	logAttrSignalName           = "signal_name"
	logAttrDeliveryCount        = "delivery_count"
	logAttrDurationMS           = "duration_ms"
	logActionExecute            = "execute"
	logActionJournal            = "journal"
	logActionQuery              = "query"
	colDeliveryID               = "delivery_id"
	colSignalName               = "signal_name"
	colReceiverID               = "receiver_id"
	colOccurredAt               = "occurred_at"
	colPayload                  = "payload"
	colMetadata                 = "metadata"
	dialectPostgres             = "postgres"
	castText                    = "?::text"
	castUUID                    = "?::uuid"
	castTimestamp               = "?::timestamp with time zone"
	castJsonb                   = "?::jsonb"
	spanNameExecute             = "pgengine.execute"
	spanAttrOperation           = "operation"
	spanAttrErrorType           = "error_type"
	metricTransactionDuration   = "signals_transaction_duration_seconds"
	metricTransactionRollbacks  = "signals_transaction_rollbacks_total"
	metricDatabaseErrors        = "signals_database_errors_total"
	statusOK                    = "ok"
	statusError                 = "error"
	errorTypeBegin              = "begin"
	errorTypeCommit             = "commit"
	errorTypeRollback           = "rollback"
	errorTypeExec               = "exec"
	errorTypeQuery              = "query"
)

var ErrNilDatabaseConnection = errors.New("database connection must not be nil")
var ErrNilRegistry = errors.New("registry must not be nil")
var ErrNilUnitOfWork = errors.New("unit of work must not be nil")
var ErrBeginningTransactionFailed = errors.New("beginning transaction failed")
var ErrCommittingTransactionFailed = errors.New("committing transaction failed")
var ErrExecutingStatementFailed = errors.New("executing statement failed")
var ErrJournalingDeliveriesFailed = errors.New("journaling deliveries failed")
var ErrQueryingJournalFailed = errors.New("querying journal failed")
var ErrScanningDBRowFailed = errors.New("scanning database row failed")
var ErrBuildingQueryFailed = errors.New("building query failed")

// Dispatcher runs units of work inside PostgreSQL transactions and gives them a
// transactional Scope for raising signals. It leverages a database adapter and
// supports customizable logging, metrics, tracing and journal table configuration.
type Dispatcher struct {
	db               adapters.DBAdapter
	registry         *signals.Registry
	journalTableName string
	logger           Logger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	contextualLogger ContextualLogger
}

// UnitOfWork is the body of one transactional scope. The scope it receives is
// also reachable for receivers via signals.ScopeFrom on the passed context.
// Returning a non-nil error rolls the whole transaction back.
type UnitOfWork func(ctx context.Context, scope *Scope) error

// NewDispatcherFromPGXPool creates a new Dispatcher using a pgx pool with optional configuration.
func NewDispatcherFromPGXPool(db *pgxpool.Pool, registry *signals.Registry, options ...Option) (*Dispatcher, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDispatcher(adapters.NewPGXAdapter(db), registry, options...)
}

// NewDispatcherFromSQLDB creates a new Dispatcher using a sql.DB with optional configuration.
func NewDispatcherFromSQLDB(db *sql.DB, registry *signals.Registry, options ...Option) (*Dispatcher, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDispatcher(adapters.NewSQLAdapter(db), registry, options...)
}

// NewDispatcherFromSQLX creates a new Dispatcher using a sqlx.DB with optional configuration.
func NewDispatcherFromSQLX(db *sqlx.DB, registry *signals.Registry, options ...Option) (*Dispatcher, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}

	return newDispatcher(adapters.NewSQLXAdapter(db), registry, options...)
}

func newDispatcher(db adapters.DBAdapter, registry *signals.Registry, options ...Option) (*Dispatcher, error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}

	d := &Dispatcher{
		db:               db,
		registry:         registry,
		journalTableName: defaultJournalTableName,
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Registry returns the signal registry this Dispatcher dispatches through.
func (d *Dispatcher) Registry() *signals.Registry {
	return d.registry
}

// Execute runs the given unit of work inside one database transaction.
//
// The transaction is the transactional scope for every signal raised through the
// Scope: deliveries are journaled in it and receivers' writes through the scope
// are bound to it. Execute commits when the unit of work returns nil and rolls
// back when it returns an error, so receiver side effects and journal rows are
// undone together with the unit of work's own writes (all-or-nothing).
//
// A panic inside the unit of work rolls the transaction back and then re-panics.
func (d *Dispatcher) Execute(ctx context.Context, unitOfWork UnitOfWork) error {
	if unitOfWork == nil {
		return ErrNilUnitOfWork
	}

	ctx, span := d.startTraceSpan(ctx, spanNameExecute, map[string]string{spanAttrOperation: logActionExecute})

	start := time.Now()

	tx, beginErr := d.db.Begin(ctx)
	if beginErr != nil {
		d.logError(ctx, logMsgBeginTxFailed, beginErr)
		d.recordErrorMetrics(ctx, logActionExecute, errorTypeBegin)
		d.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: errorTypeBegin})

		return errors.Join(ErrBeginningTransactionFailed, beginErr)
	}

	scope := &Scope{dispatcher: d, tx: tx}
	ctx = signals.WithScope(ctx, scope)

	defer func() {
		if recovered := recover(); recovered != nil {
			d.rollback(ctx, tx)
			d.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: "panic"})

			panic(recovered)
		}
	}()

	if uowErr := unitOfWork(ctx, scope); uowErr != nil {
		d.rollback(ctx, tx)
		d.logOperation(ctx, logMsgUnitOfWorkFailed, logAttrError, uowErr.Error())
		d.finishTraceSpan(span, statusError, nil)

		return uowErr
	}

	if commitErr := tx.Commit(ctx); commitErr != nil {
		d.logError(ctx, logMsgCommitTxFailed, commitErr)
		d.recordErrorMetrics(ctx, logActionExecute, errorTypeCommit)
		d.finishTraceSpan(span, statusError, map[string]string{spanAttrErrorType: errorTypeCommit})

		return errors.Join(ErrCommittingTransactionFailed, commitErr)
	}

	duration := time.Since(start)
	d.recordDurationMetrics(ctx, metricTransactionDuration, duration, logActionExecute, statusOK)
	d.logOperation(ctx, logMsgUnitOfWorkCommitted, logAttrDurationMS, d.toMilliseconds(duration))
	d.finishTraceSpan(span, statusOK, nil)

	return nil
}

// rollback rolls the transaction back, logging and counting a failed rollback without masking the original error.
func (d *Dispatcher) rollback(ctx context.Context, tx adapters.TxAdapter) {
	d.recordRollbackMetrics(ctx)

	if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
		d.logWarn(ctx, logMsgRollbackTxFailed, logAttrError, rollbackErr.Error())
		d.recordErrorMetrics(ctx, logActionExecute, errorTypeRollback)
	}
}
