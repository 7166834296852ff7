package shell

import (
	"errors"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/signalcraft/transactional-signals-go/signals"
)

// ErrMappingToSignalMetadataFailed is returned when metadata conversion fails.
var ErrMappingToSignalMetadataFailed = errors.New("mapping to signal metadata failed")

// MessageID represents a unique message identifier.
type MessageID = string

// CausationID represents the ID of the message that caused this signal.
type CausationID = string

// CorrelationID represents the ID correlating related signals.
type CorrelationID = string

// SignalMetadata contains signal tracking information.
type SignalMetadata struct {
	MessageID     MessageID
	CausationID   CausationID
	CorrelationID CorrelationID
}

// BuildSignalMetadata creates SignalMetadata from UUID values.
func BuildSignalMetadata(messageID uuid.UUID, causationID uuid.UUID, correlationID uuid.UUID) SignalMetadata {
	return SignalMetadata{
		MessageID:     messageID.String(),
		CausationID:   causationID.String(),
		CorrelationID: correlationID.String(),
	}
}

// SignalMetadataFrom extracts SignalMetadata from a Notification.
func SignalMetadataFrom(notification signals.Notification) (SignalMetadata, error) {
	metadata := new(SignalMetadata)
	err := jsoniter.ConfigFastest.Unmarshal(notification.MetadataJSON, metadata)
	if err != nil {
		return SignalMetadata{}, errors.Join(ErrMappingToSignalMetadataFailed, err)
	}

	return *metadata, nil
}
