package pgengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import

	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine/internal/adapters"
)

// Scope is the transactional scope handed to a unit of work by Dispatcher.Execute.
//
// All sends and statements go through the one transaction the scope was created
// for; nothing becomes observable outside it before the unit of work commits.
// A Scope must not be used after its unit of work has returned.
type Scope struct {
	dispatcher *Dispatcher
	tx         adapters.TxAdapter
}

// Ensure Scope implements signals.Scope so receivers can obtain it from the context.
var _ signals.Scope = (*Scope)(nil)

// Send dispatches the notification through the registry - synchronously, on the
// caller's goroutine - and journals one row per delivery inside the transaction.
//
// It stops at the first receiver error like signals.Registry.Send; in that case
// nothing is journaled, and the caller is expected to fail the unit of work so
// that partial receiver side effects are rolled back.
func (s *Scope) Send(ctx context.Context, notification signals.Notification) (signals.Deliveries, error) {
	deliveries, dispatchErr := s.dispatcher.registry.Send(ctx, notification)
	if dispatchErr != nil {
		return deliveries, dispatchErr
	}

	if journalErr := s.journalDeliveries(ctx, notification, deliveries); journalErr != nil {
		return deliveries, journalErr
	}

	return deliveries, nil
}

// SendRobust dispatches the notification like signals.Registry.SendRobust, always
// invoking every receiver, and journals the successful deliveries inside the
// transaction. Receiver errors are returned to the caller, who decides whether
// they fail the unit of work.
func (s *Scope) SendRobust(ctx context.Context, notification signals.Notification) (signals.Deliveries, error) {
	deliveries, dispatchErr := s.dispatcher.registry.SendRobust(ctx, notification)

	successful := make(signals.Deliveries, 0, len(deliveries))
	for _, delivery := range deliveries {
		if delivery.Err == nil {
			successful = append(successful, delivery)
		}
	}

	if journalErr := s.journalDeliveries(ctx, notification, successful); journalErr != nil {
		return deliveries, errors.Join(journalErr, dispatchErr)
	}

	return deliveries, dispatchErr
}

// Exec executes a statement inside the transaction and returns the number of rows affected.
// Receivers use this for side-effecting writes that must commit or roll back with the scope.
func (s *Scope) Exec(ctx context.Context, sqlStatement string) (int64, error) {
	start := time.Now()
	result, execErr := s.tx.Exec(ctx, sqlStatement)
	duration := time.Since(start)
	s.dispatcher.logQueryWithDuration(ctx, sqlStatement, logActionExecute, duration)

	if execErr != nil {
		s.dispatcher.logError(ctx, logMsgDBExecFailed, execErr, logAttrQuery, sqlStatement)
		s.dispatcher.recordErrorMetrics(ctx, logActionExecute, errorTypeExec)

		return 0, errors.Join(ErrExecutingStatementFailed, execErr)
	}

	rowsAffected, rowsAffectedErr := result.RowsAffected()
	if rowsAffectedErr != nil {
		s.dispatcher.logError(ctx, logMsgRowsAffectedFailed, rowsAffectedErr)

		return 0, errors.Join(ErrExecutingStatementFailed, rowsAffectedErr)
	}

	return rowsAffected, nil
}

// journalDeliveries inserts one journal row per delivery inside the transaction.
func (s *Scope) journalDeliveries(
	ctx context.Context,
	notification signals.Notification,
	deliveries signals.Deliveries,
) error {

	if len(deliveries) == 0 {
		return nil
	}

	sqlQuery, buildQueryErr := s.buildJournalInsertQuery(notification, deliveries)
	if buildQueryErr != nil {
		s.dispatcher.logError(ctx, logMsgBuildInsertFailed, buildQueryErr, logAttrSignalName, notification.SignalName)

		return buildQueryErr
	}

	start := time.Now()
	_, execErr := s.tx.Exec(ctx, sqlQuery)
	duration := time.Since(start)
	s.dispatcher.logQueryWithDuration(ctx, sqlQuery, logActionJournal, duration)

	if execErr != nil {
		s.dispatcher.logError(ctx, logMsgJournalInsertFailed, execErr, logAttrQuery, sqlQuery)
		s.dispatcher.recordErrorMetrics(ctx, logActionJournal, errorTypeExec)

		return errors.Join(ErrJournalingDeliveriesFailed, execErr)
	}

	s.dispatcher.logOperation(
		ctx,
		logMsgOperation+logActionJournal,
		logAttrSignalName, notification.SignalName,
		logAttrDeliveryCount, len(deliveries),
	)

	return nil
}

func (s *Scope) buildJournalInsertQuery(
	notification signals.Notification,
	deliveries signals.Deliveries,
) (string, error) {

	rows := make([][]interface{}, 0, len(deliveries))

	for _, delivery := range deliveries {
		rows = append(rows, goqu.Vals{
			goqu.L(castText, notification.SignalName),
			goqu.L(castUUID, delivery.ReceiverID.String()),
			goqu.L(castTimestamp, notification.OccurredAt),
			goqu.L(castJsonb, string(notification.PayloadJSON)),
			goqu.L(castJsonb, string(notification.MetadataJSON)),
		})
	}

	insertStmt := goqu.Dialect(dialectPostgres).
		Insert(s.dispatcher.journalTableName).
		Cols(colSignalName, colReceiverID, colOccurredAt, colPayload, colMetadata).
		Vals(rows...)

	sqlQuery, _, toSQLErr := insertStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}
