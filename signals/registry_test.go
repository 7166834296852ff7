package signals_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/signalcraft/transactional-signals-go/signals"
)

const testSignalName = "SomethingHasHappened"

func noopReceiver(_ context.Context, _ signals.Notification) error {
	return nil
}

func Test_Connect_RegistersReceiver(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	// act
	receiverID, err := registry.Connect(testSignalName, noopReceiver)

	// assert
	assert.NoError(t, err, "error connecting the receiver")
	assert.NotEqual(t, uuid.Nil, receiverID)
	assert.Equal(t, 1, registry.ReceiverCount(testSignalName))
}

func Test_Connect_With_EmptySignalName_ShouldFail(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	// act
	_, err = registry.Connect("", noopReceiver)

	// assert
	assert.ErrorIs(t, err, signals.ErrEmptySignalName)
}

func Test_Connect_With_NilReceiver_ShouldFail(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	// act
	_, err = registry.Connect(testSignalName, nil)

	// assert
	assert.ErrorIs(t, err, signals.ErrNilReceiver)
}

func Test_Connect_With_SameDispatchID_RegistersOnlyOnce(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	// act
	firstID, err := registry.Connect(testSignalName, noopReceiver, signals.WithDispatchID("unique-receiver"))
	assert.NoError(t, err, "error connecting the receiver")

	secondID, err := registry.Connect(testSignalName, noopReceiver, signals.WithDispatchID("unique-receiver"))
	assert.NoError(t, err, "error connecting the receiver")

	// assert
	assert.Equal(t, firstID, secondID, "the second Connect should return the existing registration's ID")
	assert.Equal(t, 1, registry.ReceiverCount(testSignalName))
}

func Test_Connect_With_SameDispatchID_KeepsOriginalDeliveryPosition(t *testing.T) {
	// setup
	ctx := context.Background()

	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	var order []string
	recordingReceiver := func(label string) signals.Receiver {
		return func(_ context.Context, _ signals.Notification) error {
			order = append(order, label)
			return nil
		}
	}

	// arrange
	_, err = registry.Connect(testSignalName, recordingReceiver("first"), signals.WithDispatchID("first"))
	assert.NoError(t, err, "error connecting the receiver")
	_, err = registry.Connect(testSignalName, recordingReceiver("second"))
	assert.NoError(t, err, "error connecting the receiver")
	_, err = registry.Connect(testSignalName, recordingReceiver("duplicate"), signals.WithDispatchID("first"))
	assert.NoError(t, err, "error connecting the receiver")

	notification, err := signals.BuildNotificationWithEmptyMetadata(testSignalName, fixedOccurredAt(), []byte(`{}`))
	assert.NoError(t, err, "error in arranging test data")

	// act
	_, err = registry.Send(ctx, notification)

	// assert
	assert.NoError(t, err, "error dispatching the notification")
	assert.Equal(t, []string{"first", "second"}, order)
}

func Test_Disconnect_RemovesReceiver(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	receiverID, err := registry.Connect(testSignalName, noopReceiver)
	assert.NoError(t, err, "error connecting the receiver")

	// act
	removed := registry.Disconnect(testSignalName, receiverID)

	// assert
	assert.True(t, removed)
	assert.Equal(t, 0, registry.ReceiverCount(testSignalName))
}

func Test_Disconnect_With_UnknownReceiverID_ReportsFalse(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(testSignalName, noopReceiver)
	assert.NoError(t, err, "error connecting the receiver")

	// act
	removed := registry.Disconnect(testSignalName, uuid.New())

	// assert
	assert.False(t, removed)
	assert.Equal(t, 1, registry.ReceiverCount(testSignalName))
}

func Test_DisconnectDispatchID_RemovesReceiver(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(testSignalName, noopReceiver, signals.WithDispatchID("unique-receiver"))
	assert.NoError(t, err, "error connecting the receiver")

	// act
	removed := registry.DisconnectDispatchID(testSignalName, "unique-receiver")

	// assert
	assert.True(t, removed)
	assert.Equal(t, 0, registry.ReceiverCount(testSignalName))
}

func Test_DisconnectDispatchID_With_EmptyDispatchID_ReportsFalse(t *testing.T) {
	// setup
	registry, err := signals.NewRegistry()
	assert.NoError(t, err, "error creating the registry")

	_, err = registry.Connect(testSignalName, noopReceiver)
	assert.NoError(t, err, "error connecting the receiver")

	// act
	removed := registry.DisconnectDispatchID(testSignalName, "")

	// assert
	assert.False(t, removed)
	assert.Equal(t, 1, registry.ReceiverCount(testSignalName))
}
