package pgengine

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine/internal/adapters"
)

// DeliveryRecord is one committed journal row: a receiver that was delivered a
// notification inside a transaction that went on to commit.
type DeliveryRecord struct {
	SignalName   signals.SignalNameString
	ReceiverID   signals.ReceiverID
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

type journalResultRow struct {
	signalName string
	receiverID string
	occurredAt time.Time
	payload    []byte
	metadata   []byte
}

// JournaledDeliveries retrieves the committed journal rows for the given signal
// name in delivery order. An empty signal name retrieves the whole journal.
//
// Deliveries made in rolled-back transactions never appear here.
func (d *Dispatcher) JournaledDeliveries(
	ctx context.Context,
	signalName signals.SignalNameString,
) ([]DeliveryRecord, error) {

	sqlQuery, buildQueryErr := d.buildJournalSelectQuery(signalName)
	if buildQueryErr != nil {
		d.logError(ctx, logMsgBuildSelectFailed, buildQueryErr)

		return nil, buildQueryErr
	}

	start := time.Now()
	rows, queryErr := d.db.Query(ctx, sqlQuery)
	duration := time.Since(start)
	d.logQueryWithDuration(ctx, sqlQuery, logActionQuery, duration)

	if queryErr != nil {
		d.logError(ctx, logMsgDBQueryFailed, queryErr, logAttrQuery, sqlQuery)
		d.recordErrorMetrics(ctx, logActionQuery, errorTypeQuery)

		return nil, errors.Join(ErrQueryingJournalFailed, queryErr)
	}
	defer d.closeRows(ctx, rows)

	records, scanErr := d.processJournalRows(ctx, rows)
	if scanErr != nil {
		return nil, scanErr
	}

	d.logOperation(
		ctx,
		logMsgOperation+logActionQuery,
		logAttrDeliveryCount, len(records),
		logAttrDurationMS, d.toMilliseconds(duration),
	)

	return records, nil
}

func (d *Dispatcher) buildJournalSelectQuery(signalName signals.SignalNameString) (string, error) {
	selectStmt := goqu.Dialect(dialectPostgres).
		From(d.journalTableName).
		Select(colSignalName, colReceiverID, colOccurredAt, colPayload, colMetadata).
		Order(goqu.I(colDeliveryID).Asc())

	if signalName != "" {
		selectStmt = selectStmt.Where(goqu.Ex{colSignalName: signalName})
	}

	sqlQuery, _, toSQLErr := selectStmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// processJournalRows converts database rows to delivery records.
func (d *Dispatcher) processJournalRows(ctx context.Context, rows adapters.DBRows) ([]DeliveryRecord, error) {
	result := journalResultRow{}
	records := make([]DeliveryRecord, 0)

	for rows.Next() {
		rowScanErr := rows.Scan(&result.signalName, &result.receiverID, &result.occurredAt, &result.payload, &result.metadata)
		if rowScanErr != nil {
			d.logError(ctx, logMsgScanRowFailed, rowScanErr)

			return nil, errors.Join(ErrScanningDBRowFailed, rowScanErr)
		}

		receiverID, parseErr := uuid.Parse(result.receiverID)
		if parseErr != nil {
			d.logError(ctx, logMsgScanRowFailed, parseErr, logAttrSignalName, result.signalName)

			return nil, errors.Join(ErrScanningDBRowFailed, parseErr)
		}

		records = append(records, DeliveryRecord{
			SignalName:   result.signalName,
			ReceiverID:   receiverID,
			OccurredAt:   result.occurredAt,
			PayloadJSON:  result.payload,
			MetadataJSON: result.metadata,
		})
	}

	return records, nil
}

// closeRows safely closes database rows and logs any errors.
func (d *Dispatcher) closeRows(ctx context.Context, rows adapters.DBRows) {
	if closeErr := rows.Close(); closeErr != nil {
		d.logWarn(ctx, logMsgCloseRowsFailed, logAttrError, closeErr.Error())
	}
}
