// Package logger provides the structured logger used by every satmeta component.
//
// It wraps zap with a small API taking a message, an optional error and any
// number of field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Debug})
//	log.Error("delete removed an unexpected number of documents", nil, map[string]interface{}{
//		"uri":     uri,
//		"deleted": n,
//	})
//
// Components never depend on *Logger directly. Each declares the narrow Logger
// interface it needs, which keeps them testable with gomock mocks.
//
// When Config.EnableTracing is set, the ...WithContext variants add the
// OpenTelemetry trace_id and span_id of the active span.
package logger
