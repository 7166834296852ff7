package core

import (
	"time"

	"github.com/google/uuid"
)

// UserSignedUpSignalName is the signal name identifier.
const UserSignedUpSignalName = "UserSignedUp"

// UserSignedUp represents when a new user signs up in the membership system.
type UserSignedUp struct {
	UserID     UserIDString
	Email      EmailString
	Name       string
	OccurredAt OccurredAtTS
}

// BuildUserSignedUp creates a new UserSignedUp signal.
func BuildUserSignedUp(
	userID uuid.UUID,
	email string,
	name string,
	occurredAt time.Time,
) UserSignedUp {

	signal := UserSignedUp{
		UserID:     userID.String(),
		Email:      email,
		Name:       name,
		OccurredAt: ToOccurredAt(occurredAt),
	}

	return signal
}

// SignalName returns the signal name identifier.
func (s UserSignedUp) SignalName() string {
	return UserSignedUpSignalName
}

// HasOccurredAt returns when this signal occurred.
func (s UserSignedUp) HasOccurredAt() time.Time {
	return s.OccurredAt
}
