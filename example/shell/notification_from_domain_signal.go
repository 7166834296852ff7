package shell

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/signals"
)

var (
	// ErrMarshalingPayloadFailed is returned when the domain signal payload can not be serialized.
	ErrMarshalingPayloadFailed = errors.New("marshaling signal payload failed")

	// ErrMarshalingMetadataFailed is returned when the signal metadata can not be serialized.
	ErrMarshalingMetadataFailed = errors.New("marshaling signal metadata failed")

	// ErrBuildingNotificationFailed is returned when the notification can not be built.
	ErrBuildingNotificationFailed = errors.New("building notification failed")
)

// NotificationFrom converts a DomainSignal with metadata into a Notification ready for dispatch.
func NotificationFrom(signal core.DomainSignal, metadata SignalMetadata) (signals.Notification, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(signal)
	if err != nil {
		return signals.Notification{}, errors.Join(ErrMarshalingPayloadFailed, err)
	}

	metadataJSON, err := jsoniter.ConfigFastest.Marshal(metadata)
	if err != nil {
		return signals.Notification{}, errors.Join(ErrMarshalingMetadataFailed, err)
	}

	notification, err := signals.BuildNotification(
		signal.SignalName(),
		signal.HasOccurredAt(),
		payloadJSON,
		metadataJSON,
	)
	if err != nil {
		return signals.Notification{}, errors.Join(ErrBuildingNotificationFailed, err)
	}

	return notification, nil
}

// NotificationWithEmptyMetadataFrom converts a DomainSignal into a Notification with empty metadata.
func NotificationWithEmptyMetadataFrom(signal core.DomainSignal) (signals.Notification, error) {
	payloadJSON, err := jsoniter.ConfigFastest.Marshal(signal)
	if err != nil {
		return signals.Notification{}, errors.Join(ErrMarshalingPayloadFailed, err)
	}

	notification, err := signals.BuildNotificationWithEmptyMetadata(
		signal.SignalName(),
		signal.HasOccurredAt(),
		payloadJSON,
	)
	if err != nil {
		return signals.Notification{}, errors.Join(ErrBuildingNotificationFailed, err)
	}

	return notification, nil
}
