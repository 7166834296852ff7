package shell

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/signalcraft/transactional-signals-go/example/core"
	"github.com/signalcraft/transactional-signals-go/signals"
)

var (
	// ErrMappingToDomainSignalFailed is returned when the notification payload can not be deserialized.
	ErrMappingToDomainSignalFailed = errors.New("mapping notification to domain signal failed")

	// ErrUnknownSignalName is returned when the notification carries a signal name with no mapping.
	ErrUnknownSignalName = errors.New("unknown signal name")
)

// DomainSignalFrom converts a Notification back into its typed DomainSignal.
func DomainSignalFrom(notification signals.Notification) (core.DomainSignal, error) {
	switch notification.SignalName {
	case core.UserSignedUpSignalName:
		signal := new(core.UserSignedUp)
		if err := jsoniter.ConfigFastest.Unmarshal(notification.PayloadJSON, signal); err != nil {
			return nil, errors.Join(ErrMappingToDomainSignalFailed, err)
		}

		return *signal, nil

	case core.UserEmailChangedSignalName:
		signal := new(core.UserEmailChanged)
		if err := jsoniter.ConfigFastest.Unmarshal(notification.PayloadJSON, signal); err != nil {
			return nil, errors.Join(ErrMappingToDomainSignalFailed, err)
		}

		return *signal, nil

	default:
		return nil, errors.Join(ErrUnknownSignalName, fmt.Errorf("signal name: %s", notification.SignalName))
	}
}
