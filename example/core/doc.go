// Package core contains domain signals for the example:
// user account lifecycle in a membership system.
//
// Signals represent meaningful business occurrences like UserSignedUp and
// UserEmailChanged rather than generic create/update operations. All domain
// signals implement the DomainSignal interface with SignalName() and
// HasOccurredAt() methods for dispatch integration.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'domain' layer.
package core
