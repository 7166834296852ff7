package helper

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/example/shell"
	"github.com/signalcraft/transactional-signals-go/signals"
)

// GivenUniqueID generates a unique UUID for testing.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// FixtureUserSignedUp creates a test signal for a user signing up.
func FixtureUserSignedUp(userID uuid.UUID, fakeClock time.Time) core.DomainSignal {
	return core.BuildUserSignedUp(
		userID,
		"grace.hopper@example.com",
		"Grace Hopper",
		fakeClock,
	)
}

// FixtureUserEmailChanged creates a test signal for a user changing their email.
func FixtureUserEmailChanged(userID uuid.UUID, fakeClock time.Time) core.DomainSignal {
	return core.BuildUserEmailChanged(
		userID,
		"grace.hopper@example.com",
		"grace@example.com",
		fakeClock,
	)
}

// ToNotification converts a domain signal to a notification for testing.
func ToNotification(t testing.TB, signal core.DomainSignal) signals.Notification {
	notification, err := shell.NotificationWithEmptyMetadataFrom(signal)
	assert.NoError(t, err, "error in arranging test data")

	return notification
}

// ToNotificationWithMetadata converts a domain signal with metadata to a notification.
func ToNotificationWithMetadata(
	t testing.TB,
	signal core.DomainSignal,
	metadata shell.SignalMetadata,
) signals.Notification {

	notification, err := shell.NotificationFrom(signal, metadata)
	assert.NoError(t, err, "error in arranging test data")

	return notification
}
