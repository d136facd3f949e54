package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventReporter emits EventError to the host and journals it when a journal
// is configured.
type EventReporter struct {
	emitter EventEmitter
	journal EventJournal
	logger  Logger
	now     func() time.Time
}

func NewEventReporter(emitter EventEmitter, journal EventJournal, logger Logger) *EventReporter {
	return &EventReporter{
		emitter: emitter,
		journal: journal,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// ReportError emits exactly one EventError carrying message. Emitter and
// journal failures are logged, never returned.
func (r *EventReporter) ReportError(ctx context.Context, message string) ErrorEvent {
	return r.report(ctx, message, "", "")
}

func (r *EventReporter) reportErr(ctx context.Context, err error, sessionID string) ErrorEvent {
	textCode := ""
	if mapped := bridgeErrorMapper(err); mapped != nil {
		textCode = mapped.TextCode
	}
	return r.report(ctx, HostMessage(err), textCode, sessionID)
}

func (r *EventReporter) report(ctx context.Context, message string, textCode string, sessionID string) ErrorEvent {
	event := ErrorEvent{
		ID:           uuid.NewString(),
		Name:         EventError,
		ErrorMessage: message,
		TextCode:     textCode,
		SessionID:    sessionID,
	}
	if r == nil {
		return event
	}
	event.OccurredAt = r.now()

	fields := map[string]any{
		"event":         event.Name,
		"error_message": event.ErrorMessage,
		"text_code":     event.TextCode,
		"session_id":    event.SessionID,
	}
	logWithLevel(ctx, r.logger, "error", "reporting host error", fields)

	if r.emitter != nil {
		if err := r.emitter.Emit(ctx, event.Name, event.Payload()); err != nil {
			fields["emit_error"] = err.Error()
			logWithLevel(ctx, r.logger, "warn", "host event emit failed", fields)
		}
	}
	if r.journal != nil {
		if err := r.journal.Record(ctx, event); err != nil {
			fields["journal_error"] = err.Error()
			logWithLevel(ctx, r.logger, "warn", "error event journal failed", fields)
		}
	}
	return event
}
