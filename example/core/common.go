package core

import (
	"time"
)

// Instead of implementing full value objects, alias types and helper methods are used here ...

// UserIDString represents a user identifier
type UserIDString = string

// EmailString represents an email address
type EmailString = string

// OccurredAtTS represents when a signal occurred
type OccurredAtTS = time.Time

// ToOccurredAt converts a time to OccurredAtTS with UTC normalization and microsecond precision
func ToOccurredAt(t time.Time) OccurredAtTS {
	return t.UTC().Truncate(time.Microsecond)
}

// DomainSignal is implemented by all domain signals in this package.
type DomainSignal interface {
	SignalName() string
	HasOccurredAt() time.Time
}
