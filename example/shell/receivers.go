package shell

import (
	"context"
	"errors"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect must be registered
	"github.com/google/uuid"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/signals"
)

const (
	profileTableName = "user_profiles"

	colUserID = "user_id"
	colEmail  = "email"
	colName   = "name"

	dialectPostgres = "postgres"

	castUUID = "?::uuid"
	castText = "?::text"
)

// ErrBuildingStatementFailed is returned when the SQL statement can not be built.
var ErrBuildingStatementFailed = errors.New("building sql statement failed")

// ProjectUserProfile maintains the user_profiles read model inside the caller's
// transactional scope. It is meant to be connected as a receiver for both the
// UserSignedUp and the UserEmailChanged signals.
func ProjectUserProfile(ctx context.Context, notification signals.Notification) error {
	scope, ok := signals.ScopeFrom(ctx)
	if !ok {
		return signals.ErrNoScopeInContext
	}

	signal, err := DomainSignalFrom(notification)
	if err != nil {
		return err
	}

	statement, err := profileStatementFor(signal)
	if err != nil {
		return err
	}

	if _, err = scope.Exec(ctx, statement); err != nil {
		return err
	}

	return nil
}

func profileStatementFor(signal core.DomainSignal) (string, error) {
	switch s := signal.(type) {
	case core.UserSignedUp:
		return insertProfileStatement(s)

	case core.UserEmailChanged:
		return updateProfileEmailStatement(s)

	default:
		return "", errors.Join(ErrBuildingStatementFailed, ErrUnknownSignalName)
	}
}

func insertProfileStatement(signal core.UserSignedUp) (string, error) {
	userID, err := uuid.Parse(signal.UserID)
	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	statement, _, err := goqu.Dialect(dialectPostgres).
		Insert(profileTableName).
		Cols(colUserID, colEmail, colName).
		Vals(goqu.Vals{
			goqu.L(castUUID, userID.String()),
			goqu.L(castText, signal.Email),
			goqu.L(castText, signal.Name),
		}).
		ToSQL()

	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	return statement, nil
}

func updateProfileEmailStatement(signal core.UserEmailChanged) (string, error) {
	userID, err := uuid.Parse(signal.UserID)
	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	statement, _, err := goqu.Dialect(dialectPostgres).
		Update(profileTableName).
		Set(goqu.Record{colEmail: goqu.L(castText, signal.NewEmail)}).
		Where(goqu.Ex{colUserID: goqu.L(castUUID, userID.String())}).
		ToSQL()

	if err != nil {
		return "", errors.Join(ErrBuildingStatementFailed, err)
	}

	return statement, nil
}
