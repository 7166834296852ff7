package core

import (
	"time"

	"github.com/google/uuid"
)

// UserEmailChangedSignalName is the signal name identifier.
const UserEmailChangedSignalName = "UserEmailChanged"

// UserEmailChanged represents when a user changes their email address.
type UserEmailChanged struct {
	UserID     UserIDString
	OldEmail   EmailString
	NewEmail   EmailString
	OccurredAt OccurredAtTS
}

// BuildUserEmailChanged creates a new UserEmailChanged signal.
func BuildUserEmailChanged(
	userID uuid.UUID,
	oldEmail string,
	newEmail string,
	occurredAt time.Time,
) UserEmailChanged {

	signal := UserEmailChanged{
		UserID:     userID.String(),
		OldEmail:   oldEmail,
		NewEmail:   newEmail,
		OccurredAt: ToOccurredAt(occurredAt),
	}

	return signal
}

// SignalName returns the signal name identifier.
func (s UserEmailChanged) SignalName() string {
	return UserEmailChangedSignalName
}

// HasOccurredAt returns when this signal occurred.
func (s UserEmailChanged) HasOccurredAt() time.Time {
	return s.OccurredAt
}
