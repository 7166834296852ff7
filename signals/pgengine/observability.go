package pgengine

import (
	"context"
	"math"
	"time"
)

// logQueryWithDuration logs SQL queries with execution time at debug level if a logger is configured.
func (d *Dispatcher) logQueryWithDuration(
	ctx context.Context,
	sqlQuery string,
	action string,
	duration time.Duration,
) {

	args := []any{logAttrDurationMS, d.toMilliseconds(duration), logAttrQuery, sqlQuery}

	if d.contextualLogger != nil {
		d.contextualLogger.DebugContext(ctx, logMsgSQLExecuted+action, args...)
		return
	}

	if d.logger != nil {
		d.logger.Debug(logMsgSQLExecuted+action, args...)
	}
}

// logOperation logs operational information at info level if a logger is configured.
func (d *Dispatcher) logOperation(ctx context.Context, message string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.InfoContext(ctx, message, args...)
		return
	}

	if d.logger != nil {
		d.logger.Info(message, args...)
	}
}

// logWarn logs non-critical issues at warn level if a logger is configured.
func (d *Dispatcher) logWarn(ctx context.Context, message string, args ...any) {
	if d.contextualLogger != nil {
		d.contextualLogger.WarnContext(ctx, message, args...)
		return
	}

	if d.logger != nil {
		d.logger.Warn(message, args...)
	}
}

// logError logs error information at the error level if a logger is configured.
func (d *Dispatcher) logError(ctx context.Context, message string, err error, args ...any) {
	allArgs := []any{logAttrError, err.Error()}
	allArgs = append(allArgs, args...)

	if d.contextualLogger != nil {
		d.contextualLogger.ErrorContext(ctx, message, allArgs...)
		return
	}

	if d.logger != nil {
		d.logger.Error(message, allArgs...)
	}
}

// recordDurationMetrics records duration metrics with context if the collector supports it.
func (d *Dispatcher) recordDurationMetrics(
	ctx context.Context,
	metricName string,
	duration time.Duration,
	operation string,
	status string,
) {

	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: operation, "status": status}

	if contextualCollector, ok := d.metricsCollector.(contextualMetricsCollector); ok {
		contextualCollector.RecordDurationContext(ctx, metricName, duration, labels)
		return
	}

	d.metricsCollector.RecordDuration(metricName, duration, labels)
}

// recordErrorMetrics records error metrics with context if the collector supports it.
func (d *Dispatcher) recordErrorMetrics(ctx context.Context, operation, errorType string) {
	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrOperation: operation,
		"status":          statusError,
		spanAttrErrorType: errorType,
	}

	if contextualCollector, ok := d.metricsCollector.(contextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricDatabaseErrors, labels)
		return
	}

	d.metricsCollector.IncrementCounter(metricDatabaseErrors, labels)
}

// recordRollbackMetrics counts rolled-back transactions if a metrics collector is configured.
func (d *Dispatcher) recordRollbackMetrics(ctx context.Context) {
	if d.metricsCollector == nil {
		return
	}

	labels := map[string]string{spanAttrOperation: logActionExecute}

	if contextualCollector, ok := d.metricsCollector.(contextualMetricsCollector); ok {
		contextualCollector.IncrementCounterContext(ctx, metricTransactionRollbacks, labels)
		return
	}

	d.metricsCollector.IncrementCounter(metricTransactionRollbacks, labels)
}

// startTraceSpan starts a tracing span if the tracing collector is configured.
func (d *Dispatcher) startTraceSpan(
	ctx context.Context,
	operation string,
	attrs map[string]string,
) (context.Context, SpanContext) {

	if d.tracingCollector != nil {
		return d.tracingCollector.StartSpan(ctx, operation, attrs)
	}

	return ctx, nil
}

// finishTraceSpan finishes a tracing span if the tracing collector is configured.
func (d *Dispatcher) finishTraceSpan(span SpanContext, status string, attrs map[string]string) {
	if d.tracingCollector != nil && span != nil {
		d.tracingCollector.FinishSpan(span, status, attrs)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (d *Dispatcher) toMilliseconds(duration time.Duration) float64 {
	return math.Round(float64(duration.Nanoseconds())/1e6*1000) / 1000
}

// contextualMetricsCollector mirrors signals.ContextualMetricsCollector for the engine's own interfaces.
type contextualMetricsCollector interface {
	MetricsCollector
	RecordDurationContext(ctx context.Context, metric string, duration time.Duration, labels map[string]string)
	IncrementCounterContext(ctx context.Context, metric string, labels map[string]string)
	RecordValueContext(ctx context.Context, metric string, value float64, labels map[string]string)
}
