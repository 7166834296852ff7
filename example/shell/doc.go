// Package shell provides conversion functions between domain signals and
// notifications for the example: user account lifecycle in a membership system.
//
// This package implements the "imperative shell" pattern, handling the
// translation between the functional core (domain signals) and the dispatch
// layer (notifications). It also contains the side-effecting receivers that
// maintain the user_profiles read model inside the transactional scope.
//
// In Domain-Driven Design or Hexagonal Architecture terminology, this would be
// called the 'infrastructure' layer.
package shell
