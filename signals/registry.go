package signals

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrNilReceiver = errors.New("nil receiver supplied")

// ReceiverID is a type alias for uuid.UUID, identifying a single receiver registration.
type ReceiverID = uuid.UUID

// DispatchIDString is a type alias for string, representing a caller-chosen registration identity.
type DispatchIDString = string

// Receiver is a callback invoked synchronously for each notification raised on a connected signal.
//
// Receivers run on the goroutine that raised the signal. A receiver that needs to perform
// database writes inside an enclosing transactional scope should obtain it with ScopeFrom(ctx).
type Receiver func(ctx context.Context, notification Notification) error

// registration pairs a Receiver with its identities; order of registrations is delivery order.
type registration struct {
	id         ReceiverID
	dispatchID DispatchIDString
	receiver   Receiver
}

// Registry holds ordered receiver registrations per signal name and dispatches notifications to them.
//
// All methods are safe for concurrent use. Dispatch itself introduces no concurrency:
// receivers run one after another on the caller's goroutine.
type Registry struct {
	mu               sync.Mutex
	registrations    map[SignalNameString][]registration
	logger           Logger
	metricsCollector MetricsCollector
	tracingCollector TracingCollector
	contextualLogger ContextualLogger
}

// Option defines a functional option for configuring a Registry.
type Option func(*Registry) error

// WithLogger sets the logger for the Registry.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: per-receiver delivery timing (development use)
// Info level: delivery counts and dispatch durations (production-safe)
// Warn level: non-critical issues like disconnecting unknown receivers
// Error level: receiver failures that cause dispatch failures.
func WithLogger(logger Logger) Option {
	return func(r *Registry) error {
		r.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Registry.
// The metrics collector will receive dispatch durations, delivery counts and receiver error counts.
func WithMetrics(collector MetricsCollector) Option {
	return func(r *Registry) error {
		r.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Registry.
// The tracing collector will receive span creation for send operations,
// context propagation, and error tracking.
func WithTracing(collector TracingCollector) Option {
	return func(r *Registry) error {
		r.tracingCollector = collector
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Registry.
// The contextual logger will receive log messages with context information including
// automatic trace/span correlation when tracing is enabled.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(r *Registry) error {
		r.contextualLogger = logger
		return nil
	}
}

// NewRegistry creates a new empty Registry with optional configuration.
func NewRegistry(options ...Option) (*Registry, error) {
	r := &Registry{
		registrations: make(map[SignalNameString][]registration),
	}

	for _, option := range options {
		if err := option(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// ConnectOption defines a functional option for a single Connect call.
type ConnectOption func(*registration)

// WithDispatchID gives the registration a caller-chosen identity.
//
// Connecting a receiver twice under the same dispatch ID registers it only once:
// the second Connect is a no-op that returns the ReceiverID of the first registration,
// which also keeps its original delivery position.
func WithDispatchID(dispatchID DispatchIDString) ConnectOption {
	return func(reg *registration) {
		reg.dispatchID = dispatchID
	}
}

// Connect registers a receiver for the given signal name and returns its ReceiverID.
//
// Receivers are delivered to in registration order. Returns an error if the
// signal name is empty or the receiver is nil.
func (r *Registry) Connect(
	signalName SignalNameString,
	receiver Receiver,
	options ...ConnectOption,
) (ReceiverID, error) {

	if signalName == "" {
		return uuid.Nil, ErrEmptySignalName
	}

	if receiver == nil {
		return uuid.Nil, ErrNilReceiver
	}

	reg := registration{
		id:       uuid.New(),
		receiver: receiver,
	}

	for _, option := range options {
		option(&reg)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if reg.dispatchID != "" {
		for _, existing := range r.registrations[signalName] {
			if existing.dispatchID == reg.dispatchID {
				return existing.id, nil
			}
		}
	}

	r.registrations[signalName] = append(r.registrations[signalName], reg)

	return reg.id, nil
}

// Disconnect removes the registration with the given ReceiverID from the signal.
// It reports whether a registration was removed.
func (r *Registry) Disconnect(signalName SignalNameString, id ReceiverID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeRegistration(signalName, func(reg registration) bool {
		return reg.id == id
	})
}

// DisconnectDispatchID removes the registration with the given dispatch ID from the signal.
// It reports whether a registration was removed.
func (r *Registry) DisconnectDispatchID(signalName SignalNameString, dispatchID DispatchIDString) bool {
	if dispatchID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.removeRegistration(signalName, func(reg registration) bool {
		return reg.dispatchID == dispatchID
	})
}

// ReceiverCount returns the number of receivers currently connected to the signal.
func (r *Registry) ReceiverCount(signalName SignalNameString) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.registrations[signalName])
}

// removeRegistration removes the first registration matching the predicate; the caller must hold the lock.
func (r *Registry) removeRegistration(signalName SignalNameString, match func(registration) bool) bool {
	regs := r.registrations[signalName]

	for i, reg := range regs {
		if match(reg) {
			r.registrations[signalName] = append(regs[:i:i], regs[i+1:]...)

			if len(r.registrations[signalName]) == 0 {
				delete(r.registrations, signalName)
			}

			if r.logger != nil {
				r.logger.Debug(logMsgReceiverDisconnected, logAttrSignalName, signalName)
			}

			return true
		}
	}

	if r.logger != nil {
		r.logger.Warn(logMsgUnknownReceiver, logAttrSignalName, signalName)
	}

	return false
}

// snapshotRegistrations copies the current registrations for a signal so that
// dispatch can run outside the lock on the caller's goroutine.
func (r *Registry) snapshotRegistrations(signalName SignalNameString) []registration {
	r.mu.Lock()
	defer r.mu.Unlock()

	regs := r.registrations[signalName]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)

	return snapshot
}
