// Package observability provides logging, metrics, and tracing for the
// event aggregator.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Metrics and tracing are opt-in and have no-op implementations when
// disabled. Every logging helper accepts a nil logger.
package observability

import (
	"log/slog"
)

// LogListenerAdded logs a new registration.
func LogListenerAdded(logger *slog.Logger, listenerID, listenerType, ownership string, contracts int) {
	if logger == nil {
		return
	}
	logger.Debug("listener added",
		slog.String("listener_id", listenerID),
		slog.String("listener_type", listenerType),
		slog.String("ownership", ownership),
		slog.Int("contracts", contracts),
	)
}

// LogListenerRemoved logs an explicit removal.
func LogListenerRemoved(logger *slog.Logger, listenerID, listenerType string) {
	if logger == nil {
		return
	}
	logger.Debug("listener removed",
		slog.String("listener_id", listenerID),
		slog.String("listener_type", listenerType),
	)
}

// LogListenerPruned logs removal of a weak listener that is gone.
func LogListenerPruned(logger *slog.Logger, listenerID, listenerType string) {
	if logger == nil {
		return
	}
	logger.Debug("listener pruned",
		slog.String("listener_id", listenerID),
		slog.String("listener_type", listenerType),
	)
}

// LogUnhandled logs a message that reached no listener.
func LogUnhandled(logger *slog.Logger, messageType string) {
	if logger == nil {
		return
	}
	logger.Debug("message had no listeners",
		slog.String("message_type", messageType),
	)
}

// LogDeadLetterError logs a failure to store an unhandled message (non-fatal).
func LogDeadLetterError(logger *slog.Logger, messageType string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("dead letter not recorded",
		slog.String("message_type", messageType),
		slog.String("error", err.Error()),
	)
}
