package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingJournal struct{}

func (failingJournal) Record(context.Context, ErrorEvent) error {
	return errors.New("disk full")
}

func (failingJournal) List(context.Context, ErrorEventFilter) ([]ErrorEvent, error) {
	return nil, nil
}

func TestEventReporter_ReportErrorEmitsOnce(t *testing.T) {
	emitter := &captureEmitter{}
	journal := NewMemoryEventJournal()
	reporter := NewEventReporter(emitter, journal, stubLogger{})

	event := reporter.ReportError(context.Background(), "something broke")
	if event.Name != EventError || event.ErrorMessage != "something broke" {
		t.Fatalf("unexpected event %#v", event)
	}
	events := emitter.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one emitted event, got %d", len(events))
	}
	if events[0].payload[ErrorMessageField] != "something broke" {
		t.Fatalf("unexpected payload %#v", events[0].payload)
	}
	if len(events[0].payload) != 1 {
		t.Fatalf("expected payload to carry only %s, got %#v", ErrorMessageField, events[0].payload)
	}
	stored, _ := journal.List(context.Background(), ErrorEventFilter{})
	if len(stored) != 1 || stored[0].ID != event.ID {
		t.Fatalf("expected event to be journaled, got %#v", stored)
	}
}

func TestEventReporter_EmptyMessageStillEmitted(t *testing.T) {
	emitter := &captureEmitter{}
	reporter := NewEventReporter(emitter, nil, nil)

	reporter.ReportError(context.Background(), "")
	events := emitter.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	message, ok := events[0].payload[ErrorMessageField].(string)
	if !ok || message != "" {
		t.Fatalf("expected empty string message, got %#v", events[0].payload[ErrorMessageField])
	}
}

func TestEventReporter_FailuresAreSwallowed(t *testing.T) {
	emitter := &captureEmitter{err: errors.New("bridge detached")}
	logger := newCaptureLogger()
	reporter := NewEventReporter(emitter, failingJournal{}, logger)

	reporter.reportErr(context.Background(), notInitializedError(), "s1")

	var emitWarn, journalWarn bool
	for _, record := range logger.snapshot() {
		if record.level != "warn" {
			continue
		}
		switch record.msg {
		case "host event emit failed":
			emitWarn = true
		case "error event journal failed":
			journalWarn = true
		}
	}
	if !emitWarn || !journalWarn {
		t.Fatalf("expected emit and journal failures to be logged, got %#v", logger.snapshot())
	}
}

func TestEventReporter_ReportErrCarriesTextCode(t *testing.T) {
	journal := NewMemoryEventJournal()
	reporter := NewEventReporter(nil, journal, nil)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	reporter.now = func() time.Time { return fixed }

	event := reporter.reportErr(context.Background(), errors.New("plain failure"), "s1")
	if event.TextCode != ErrorInternal {
		t.Fatalf("expected unclassified errors to map to %s, got %s", ErrorInternal, event.TextCode)
	}
	if event.ErrorMessage != "plain failure" {
		t.Fatalf("expected raw message, got %q", event.ErrorMessage)
	}
	if !event.OccurredAt.Equal(fixed) || event.SessionID != "s1" {
		t.Fatalf("unexpected event %#v", event)
	}
}
