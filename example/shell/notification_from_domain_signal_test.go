package shell_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/example/shell"
	"github.com/signalcraft/transactional-signals-go/signals"
)

func Test_NotificationFrom_And_DomainSignalFrom_Roundtrip(t *testing.T) {
	// setup
	userID := uuid.New()
	occurredAt := time.Unix(0, 0).UTC()
	signal := core.BuildUserSignedUp(userID, "ada@example.com", "Ada Lovelace", occurredAt)
	metadata := shell.BuildSignalMetadata(uuid.New(), uuid.New(), uuid.New())

	// act
	notification, err := shell.NotificationFrom(signal, metadata)
	assert.NoError(t, err, "error building the notification")

	restoredSignal, err := shell.DomainSignalFrom(notification)
	assert.NoError(t, err, "error restoring the domain signal")

	restoredMetadata, err := shell.SignalMetadataFrom(notification)
	assert.NoError(t, err, "error restoring the signal metadata")

	// assert
	assert.Equal(t, core.UserSignedUpSignalName, notification.SignalName)
	assert.Equal(t, signal, restoredSignal)
	assert.Equal(t, metadata, restoredMetadata)
}

func Test_NotificationWithEmptyMetadataFrom_PopulatesEmptyMetadata(t *testing.T) {
	// setup
	userID := uuid.New()
	occurredAt := time.Unix(0, 0).UTC()
	signal := core.BuildUserEmailChanged(userID, "ada@example.com", "lovelace@example.com", occurredAt)

	// act
	notification, err := shell.NotificationWithEmptyMetadataFrom(signal)

	// assert
	assert.NoError(t, err, "error building the notification")
	assert.Equal(t, core.UserEmailChangedSignalName, notification.SignalName)
	assert.Equal(t, []byte(`{}`), notification.MetadataJSON)
}

func Test_DomainSignalFrom_With_UnknownSignalName_ShouldFail(t *testing.T) {
	// setup
	notification, err := signals.BuildNotificationWithEmptyMetadata(
		"SomethingUnknown",
		time.Unix(0, 0).UTC(),
		[]byte(`{}`),
	)
	assert.NoError(t, err, "error in arranging test data")

	// act
	_, err = shell.DomainSignalFrom(notification)

	// assert
	assert.ErrorIs(t, err, shell.ErrUnknownSignalName)
}
