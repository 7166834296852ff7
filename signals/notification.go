package signals

import (
	"errors"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var ErrEmptySignalName = errors.New("signal name must not be empty")
var ErrInvalidPayloadJSON = errors.New("payload json is not valid")
var ErrInvalidMetadataJSON = errors.New("metadata json is not valid")

// SignalNameString is a type alias for string, representing the name of a signal.
type SignalNameString = string

// Notification is a DTO (data transfer object) used to raise signals and to journal their deliveries.
//
// It is built on scalars to be completely agnostic of the implementation of domain payloads in the client code.
//
// While its properties are exported, it should only be constructed with the supplied factory methods:
//   - BuildNotification
//   - BuildNotificationWithEmptyMetadata
type Notification struct {
	SignalName   SignalNameString
	OccurredAt   time.Time
	PayloadJSON  []byte
	MetadataJSON []byte
}

// BuildNotification is a factory method for Notification.
//
// It populates the Notification with the given scalar input.
// Returns an error if signalName is empty or payloadJSON / metadataJSON are not valid JSON.
func BuildNotification(
	signalName SignalNameString,
	occurredAt time.Time,
	payloadJSON []byte,
	metadataJSON []byte,
) (Notification, error) {

	if signalName == "" {
		return Notification{}, ErrEmptySignalName
	}

	if !jsoniter.ConfigFastest.Valid(payloadJSON) {
		return Notification{}, ErrInvalidPayloadJSON
	}

	if !jsoniter.ConfigFastest.Valid(metadataJSON) {
		return Notification{}, ErrInvalidMetadataJSON
	}

	return Notification{
		SignalName:   signalName,
		OccurredAt:   occurredAt,
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// BuildNotificationWithEmptyMetadata is a factory method for Notification.
//
// It populates the Notification with the given scalar input and creates valid empty JSON for MetadataJSON.
// Returns an error if signalName is empty or payloadJSON is not valid JSON.
func BuildNotificationWithEmptyMetadata(
	signalName SignalNameString,
	occurredAt time.Time,
	payloadJSON []byte,
) (Notification, error) {

	return BuildNotification(signalName, occurredAt, payloadJSON, []byte("{}"))
}
