package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-idcapture/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultEventJournalLimit = 100

// EventJournal keeps an audit trail of every EventError sent to the host.
type EventJournal struct {
	db   *bun.DB
	repo repository.Repository[*errorEventRecord]
}

func NewEventJournal(db *bun.DB) (*EventJournal, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*errorEventRecord](db, errorEventHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid error event repository wiring: %w", err)
		}
	}
	return &EventJournal{db: db, repo: repo}, nil
}

func (j *EventJournal) Record(ctx context.Context, event core.ErrorEvent) error {
	if j == nil || j.repo == nil {
		return fmt.Errorf("sqlstore: event journal is not configured")
	}
	record := &errorEventRecord{
		ID:           strings.TrimSpace(event.ID),
		Name:         strings.TrimSpace(event.Name),
		ErrorMessage: event.ErrorMessage,
		TextCode:     strings.TrimSpace(event.TextCode),
		SessionID:    strings.TrimSpace(event.SessionID),
		OccurredAt:   event.OccurredAt.UTC(),
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Name == "" {
		record.Name = core.EventError
	}
	if event.OccurredAt.IsZero() {
		record.OccurredAt = time.Now().UTC()
	}
	_, err := j.repo.Create(ctx, record)
	return err
}

// List returns events newest first. A zero limit falls back to 100 rows.
func (j *EventJournal) List(ctx context.Context, filter core.ErrorEventFilter) ([]core.ErrorEvent, error) {
	if j == nil || j.repo == nil {
		return nil, fmt.Errorf("sqlstore: event journal is not configured")
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventJournalLimit
	}
	selectors := []repository.SelectCriteria{
		repository.OrderBy("occurred_at DESC"),
		repository.SelectPaginate(limit, 0),
	}
	if sessionID := strings.TrimSpace(filter.SessionID); sessionID != "" {
		selectors = append(selectors, repository.SelectBy("session_id", "=", sessionID))
	}

	records, _, err := j.repo.List(ctx, selectors...)
	if err != nil {
		return nil, err
	}
	events := make([]core.ErrorEvent, 0, len(records))
	for _, record := range records {
		events = append(events, record.toDomain())
	}
	return events, nil
}

func (r *errorEventRecord) toDomain() core.ErrorEvent {
	if r == nil {
		return core.ErrorEvent{}
	}
	return core.ErrorEvent{
		ID:           r.ID,
		Name:         r.Name,
		ErrorMessage: r.ErrorMessage,
		TextCode:     r.TextCode,
		SessionID:    r.SessionID,
		OccurredAt:   r.OccurredAt.UTC(),
	}
}
