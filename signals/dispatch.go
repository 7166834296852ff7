package signals

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	logMsgDispatchCompleted     = "signal dispatch: completed"
	logMsgReceiverFailed        = "signal dispatch: receiver failed"
	logMsgReceiverPanicked      = "signal dispatch: receiver panicked"
	logMsgReceiverDelivered     = "signal dispatch: receiver delivered"
	logMsgReceiverDisconnected  = "signal dispatch: receiver disconnected"
	logMsgUnknownReceiver       = "signal dispatch: no matching receiver to disconnect"
	logAttrSignalName           = "signal_name"
	logAttrError                = "error"
	logAttrReceiverID           = "receiver_id"
	logAttrDeliveryCount        = "delivery_count"
	logAttrDurationMS           = "duration_ms"
	metricDispatchDuration      = "signals_dispatch_duration_seconds"
	metricDeliveries            = "signals_deliveries_total"
	metricReceiverErrors        = "signals_receiver_errors_total"
	spanNameSend                = "signals.send"
	spanNameSendRobust          = "signals.send_robust"
	spanAttrSignalName          = "signal.name"
	spanAttrDeliveryCount       = "signal.delivery_count"
	statusOK                    = "ok"
	statusError                 = "error"
)

var ErrDispatchFailed = errors.New("dispatching signal failed")
var ErrReceiverPanicked = errors.New("receiver panicked")

// Deliveries is an alias type for a slice of Delivery.
type Deliveries = []Delivery

// Delivery records the outcome of invoking one receiver for one notification.
type Delivery struct {
	ReceiverID ReceiverID
	SignalName SignalNameString
	Err        error
}

// Send raises a notification, invoking every receiver connected to its signal name
// in registration order, one after another, on the caller's goroutine.
//
// Send returns control only after the last receiver has completed: the call blocks
// for the combined duration of all receivers. It stops at the first receiver error
// and returns the deliveries made so far together with the error joined onto
// ErrDispatchFailed. A panicking receiver propagates to the caller.
//
// Sending a notification with no connected receivers returns empty deliveries and no error.
func (r *Registry) Send(ctx context.Context, notification Notification) (Deliveries, error) {
	ctx, span := r.startTraceSpan(ctx, spanNameSend, map[string]string{spanAttrSignalName: notification.SignalName})

	start := time.Now()
	deliveries := make(Deliveries, 0)

	for _, reg := range r.snapshotRegistrations(notification.SignalName) {
		receiverErr := reg.receiver(ctx, notification)
		deliveries = append(deliveries, Delivery{ReceiverID: reg.id, SignalName: notification.SignalName, Err: receiverErr})

		if receiverErr != nil {
			r.logReceiverError(ctx, logMsgReceiverFailed, notification.SignalName, reg.id, receiverErr)
			r.recordReceiverErrorMetrics(ctx, notification.SignalName)
			r.finishTraceSpan(span, statusError, map[string]string{logAttrError: receiverErr.Error()})

			return deliveries, errors.Join(ErrDispatchFailed, receiverErr)
		}

		r.logDelivery(ctx, notification.SignalName, reg.id)
	}

	duration := time.Since(start)
	r.recordDispatchMetrics(ctx, notification.SignalName, duration, statusOK)
	r.logDispatchCompleted(ctx, notification.SignalName, len(deliveries), duration)
	r.finishTraceSpan(span, statusOK, map[string]string{spanAttrDeliveryCount: fmt.Sprintf("%d", len(deliveries))})

	return deliveries, nil
}

// SendRobust raises a notification like Send but always invokes every receiver,
// even after failures. Receiver errors are collected and returned joined onto
// ErrDispatchFailed; a panicking receiver is recovered and reported as a
// delivery error wrapping ErrReceiverPanicked.
//
// The synchronous and same-goroutine guarantees of Send hold unchanged.
func (r *Registry) SendRobust(ctx context.Context, notification Notification) (Deliveries, error) {
	ctx, span := r.startTraceSpan(ctx, spanNameSendRobust, map[string]string{spanAttrSignalName: notification.SignalName})

	start := time.Now()
	deliveries := make(Deliveries, 0)
	receiverErrors := make([]error, 0)

	for _, reg := range r.snapshotRegistrations(notification.SignalName) {
		receiverErr := r.callReceiverRecovering(ctx, reg, notification)
		deliveries = append(deliveries, Delivery{ReceiverID: reg.id, SignalName: notification.SignalName, Err: receiverErr})

		if receiverErr != nil {
			receiverErrors = append(receiverErrors, receiverErr)
			r.logReceiverError(ctx, logMsgReceiverFailed, notification.SignalName, reg.id, receiverErr)
			r.recordReceiverErrorMetrics(ctx, notification.SignalName)

			continue
		}

		r.logDelivery(ctx, notification.SignalName, reg.id)
	}

	duration := time.Since(start)

	if len(receiverErrors) > 0 {
		r.recordDispatchMetrics(ctx, notification.SignalName, duration, statusError)
		r.finishTraceSpan(span, statusError, nil)

		return deliveries, errors.Join(append([]error{ErrDispatchFailed}, receiverErrors...)...)
	}

	r.recordDispatchMetrics(ctx, notification.SignalName, duration, statusOK)
	r.logDispatchCompleted(ctx, notification.SignalName, len(deliveries), duration)
	r.finishTraceSpan(span, statusOK, map[string]string{spanAttrDeliveryCount: fmt.Sprintf("%d", len(deliveries))})

	return deliveries, nil
}

// callReceiverRecovering invokes a receiver and converts a panic into an error wrapping ErrReceiverPanicked.
func (r *Registry) callReceiverRecovering(
	ctx context.Context,
	reg registration,
	notification Notification,
) (receiverErr error) {

	defer func() {
		if recovered := recover(); recovered != nil {
			receiverErr = errors.Join(ErrReceiverPanicked, fmt.Errorf("%v", recovered))

			r.logReceiverError(ctx, logMsgReceiverPanicked, notification.SignalName, reg.id, receiverErr)
		}
	}()

	return reg.receiver(ctx, notification)
}

// logDelivery logs a single successful delivery at debug level if a logger is configured.
func (r *Registry) logDelivery(ctx context.Context, signalName SignalNameString, id ReceiverID) {
	if r.contextualLogger != nil {
		r.contextualLogger.DebugContext(ctx, logMsgReceiverDelivered, logAttrSignalName, signalName, logAttrReceiverID, id.String())
		return
	}

	if r.logger != nil {
		r.logger.Debug(logMsgReceiverDelivered, logAttrSignalName, signalName, logAttrReceiverID, id.String())
	}
}

// logDispatchCompleted logs operational information at info level if a logger is configured.
func (r *Registry) logDispatchCompleted(
	ctx context.Context,
	signalName SignalNameString,
	deliveryCount int,
	duration time.Duration,
) {

	args := []any{
		logAttrSignalName, signalName,
		logAttrDeliveryCount, deliveryCount,
		logAttrDurationMS, durationToMilliseconds(duration),
	}

	if r.contextualLogger != nil {
		r.contextualLogger.InfoContext(ctx, logMsgDispatchCompleted, args...)
		return
	}

	if r.logger != nil {
		r.logger.Info(logMsgDispatchCompleted, args...)
	}
}

// logReceiverError logs receiver failures at error level if a logger is configured.
func (r *Registry) logReceiverError(
	ctx context.Context,
	message string,
	signalName SignalNameString,
	id ReceiverID,
	err error,
) {

	args := []any{logAttrError, err.Error(), logAttrSignalName, signalName, logAttrReceiverID, id.String()}

	if r.contextualLogger != nil {
		r.contextualLogger.ErrorContext(ctx, message, args...)
		return
	}

	if r.logger != nil {
		r.logger.Error(message, args...)
	}
}

// recordDispatchMetrics records dispatch duration and delivery counts if a metrics collector is configured.
func (r *Registry) recordDispatchMetrics(
	ctx context.Context,
	signalName SignalNameString,
	duration time.Duration,
	status string,
) {

	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrSignalName: signalName, "status": status}

	if contextualCollector, ok := r.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricDispatchDuration, duration, labels)
		contextualCollector.IncrementCounterContext(ctx, metricDeliveries, labels)

		return
	}

	r.metricsCollector.RecordDuration(metricDispatchDuration, duration, labels)
	r.metricsCollector.IncrementCounter(metricDeliveries, labels)
}

// recordReceiverErrorMetrics records receiver error counts if a metrics collector is configured.
func (r *Registry) recordReceiverErrorMetrics(ctx context.Context, signalName SignalNameString) {
	if r.metricsCollector == nil {
		return
	}

	labels := map[string]string{logAttrSignalName: signalName, "status": statusError}

	if contextualCollector, ok := r.metricsCollector.(ContextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricReceiverErrors, labels)
		return
	}

	r.metricsCollector.IncrementCounter(metricReceiverErrors, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (r *Registry) startTraceSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, SpanContext) {

	if r.tracingCollector != nil {
		return r.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (r *Registry) finishTraceSpan(span SpanContext, status string, attrs map[string]string) {
	if r.tracingCollector != nil && span != nil {
		r.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}
