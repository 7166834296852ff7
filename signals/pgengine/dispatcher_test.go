package pgengine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/example/shell"
	"github.com/signalcraft/transactional-signals-go/signals"
	"github.com/signalcraft/transactional-signals-go/signals/pgengine"
	. "github.com/signalcraft/transactional-signals-go/testutil/pgengine/helper"
	"github.com/signalcraft/transactional-signals-go/testutil/pgengine/helper/postgreswrapper"
)

func newRegistryWithProfileProjection(t *testing.T) *signals.Registry {
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(core.UserSignedUpSignalName, shell.ProjectUserProfile)
	assert.NoError(t, err, "error connecting the receiver")

	_, err = registry.Connect(core.UserEmailChangedSignalName, shell.ProjectUserProfile)
	assert.NoError(t, err, "error connecting the receiver")

	return registry
}

func Test_Execute_Commits_ReceiverWritesAndJournal(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry := newRegistryWithProfileProjection(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)
	notification := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))

	// act
	err := dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		_, sendErr := scope.Send(ctx, notification)
		return sendErr
	})

	// assert
	assert.NoError(t, err, "error executing the unit of work")
	assert.Equal(t, 1, postgreswrapper.CountJournalRows(t, wrapper))
	assert.Equal(t, 1, postgreswrapper.CountProfileRows(t, wrapper))
	assert.Equal(t, "grace.hopper@example.com", postgreswrapper.GetProfileEmail(t, wrapper, userID.String()))
}

func Test_Execute_RollsBack_When_TheUnitOfWorkFails(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry := newRegistryWithProfileProjection(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()
	unitOfWorkErr := errors.New("business rule violated")

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)
	notification := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))

	// act
	err := dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		if _, sendErr := scope.Send(ctx, notification); sendErr != nil {
			return sendErr
		}

		// failing after the send must undo the receiver's writes and journal rows
		return unitOfWorkErr
	})

	// assert
	assert.ErrorIs(t, err, unitOfWorkErr)
	assert.Equal(t, 0, postgreswrapper.CountJournalRows(t, wrapper))
	assert.Equal(t, 0, postgreswrapper.CountProfileRows(t, wrapper))
}

func Test_Execute_RollsBack_When_AReceiverFails(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receiverErr := errors.New("projection failed")

	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(core.UserSignedUpSignalName, shell.ProjectUserProfile)
	assert.NoError(t, err, "error connecting the receiver")

	_, err = registry.Connect(core.UserSignedUpSignalName, func(_ context.Context, _ signals.Notification) error {
		return receiverErr
	})
	assert.NoError(t, err, "error connecting the receiver")

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)
	notification := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))

	// act
	err = dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		_, sendErr := scope.Send(ctx, notification)
		return sendErr
	})

	// assert
	assert.ErrorIs(t, err, signals.ErrDispatchFailed)
	assert.ErrorIs(t, err, receiverErr)
	assert.Equal(t, 0, postgreswrapper.CountJournalRows(t, wrapper))
	assert.Equal(t, 0, postgreswrapper.CountProfileRows(t, wrapper),
		"the first receiver's write should be rolled back with the transaction")
}

func Test_Execute_RollsBackAndRepanics_When_TheUnitOfWorkPanics(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry := newRegistryWithProfileProjection(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)
	notification := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))

	// act + assert
	assert.PanicsWithValue(t, "unit of work exploded", func() {
		_ = dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
			if _, sendErr := scope.Send(ctx, notification); sendErr != nil {
				return sendErr
			}

			panic("unit of work exploded")
		})
	})

	assert.Equal(t, 0, postgreswrapper.CountJournalRows(t, wrapper))
	assert.Equal(t, 0, postgreswrapper.CountProfileRows(t, wrapper))
}

func Test_SendRobust_JournalsOnlySuccessfulDeliveries(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	receiverErr := errors.New("projection failed")

	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(core.UserSignedUpSignalName, shell.ProjectUserProfile)
	assert.NoError(t, err, "error connecting the receiver")

	_, err = registry.Connect(core.UserSignedUpSignalName, func(_ context.Context, _ signals.Notification) error {
		return receiverErr
	})
	assert.NoError(t, err, "error connecting the receiver")

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)
	notification := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))

	// act: the unit of work tolerates receiver failures and commits
	err = dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		deliveries, sendErr := scope.SendRobust(ctx, notification)
		assert.ErrorIs(t, sendErr, signals.ErrDispatchFailed)
		assert.ErrorIs(t, sendErr, receiverErr)
		assert.Len(t, deliveries, 2)

		return nil
	})

	// assert
	assert.NoError(t, err, "error executing the unit of work")
	assert.Equal(t, 1, postgreswrapper.CountJournalRows(t, wrapper),
		"only the successful delivery should be journaled")
	assert.Equal(t, 1, postgreswrapper.CountProfileRows(t, wrapper))
}

func Test_JournaledDeliveries_RetrievesCommittedDeliveriesInOrder(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry := newRegistryWithProfileProjection(t)
	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	fakeClock := time.Unix(0, 0).UTC()

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)

	signedUp := ToNotification(t, FixtureUserSignedUp(userID, fakeClock))
	emailChanged := ToNotification(t, FixtureUserEmailChanged(userID, fakeClock.Add(time.Second)))

	err := dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		if _, sendErr := scope.Send(ctx, signedUp); sendErr != nil {
			return sendErr
		}

		_, sendErr := scope.Send(ctx, emailChanged)
		return sendErr
	})
	assert.NoError(t, err, "error in arranging test data")

	// act
	allRecords, err := dispatcher.JournaledDeliveries(ctxWithTimeout, "")
	assert.NoError(t, err, "error querying the journal")

	signedUpRecords, err := dispatcher.JournaledDeliveries(ctxWithTimeout, core.UserSignedUpSignalName)
	assert.NoError(t, err, "error querying the journal")

	// assert
	assert.Len(t, allRecords, 2)
	assert.Equal(t, core.UserSignedUpSignalName, allRecords[0].SignalName)
	assert.Equal(t, core.UserEmailChangedSignalName, allRecords[1].SignalName)

	assert.Len(t, signedUpRecords, 1)
	assert.Equal(t, core.UserSignedUpSignalName, signedUpRecords[0].SignalName)
	assert.True(t, fakeClock.Equal(signedUpRecords[0].OccurredAt), "the journaled occurred_at should match")
}

func Test_Scope_Exec_WritesInsideTheTransaction(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()
	dispatcher := wrapper.GetDispatcher()

	unitOfWorkErr := errors.New("abort after writing")

	// arrange
	postgreswrapper.CleanUp(t, wrapper)
	userID := GivenUniqueID(t)

	insertStatement := `INSERT INTO user_profiles (user_id, email, name) VALUES ('` +
		userID.String() + `', 'direct@example.com', 'Direct Write')`

	// act
	err = dispatcher.Execute(ctxWithTimeout, func(ctx context.Context, scope *pgengine.Scope) error {
		rowsAffected, execErr := scope.Exec(ctx, insertStatement)
		assert.NoError(t, execErr, "error executing the statement")
		assert.Equal(t, int64(1), rowsAffected)

		return unitOfWorkErr
	})

	// assert
	assert.ErrorIs(t, err, unitOfWorkErr)
	assert.Equal(t, 0, postgreswrapper.CountProfileRows(t, wrapper),
		"the write through the scope should be rolled back with the unit of work")
}

func Test_Execute_With_NilUnitOfWork_ShouldFail(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	wrapper := postgreswrapper.CreateWrapperWithTestConfig(t, registry)
	defer wrapper.Close()

	// act
	err = wrapper.GetDispatcher().Execute(ctxWithTimeout, nil)

	// assert
	assert.ErrorIs(t, err, pgengine.ErrNilUnitOfWork)
}

func Test_NewDispatcher_With_EmptyTableName_ShouldFail(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	// act
	err = postgreswrapper.TryCreateDispatcherWithTableName(t, registry, "")

	// assert
	assert.ErrorIs(t, err, pgengine.ErrEmptyJournalTableName)
}
