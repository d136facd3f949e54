package query

import (
	"context"

	"github.com/goliatone/go-idcapture/core"
)

type SessionReader interface {
	ActiveSession(ctx context.Context) (core.SessionSnapshot, bool)
}

type ErrorEventReader interface {
	ErrorEvents(ctx context.Context, filter core.ErrorEventFilter) ([]core.ErrorEvent, error)
}

type ActiveSessionQuery struct {
	reader SessionReader
}

func NewActiveSessionQuery(reader SessionReader) *ActiveSessionQuery {
	return &ActiveSessionQuery{reader: reader}
}

func (q *ActiveSessionQuery) Query(ctx context.Context, _ ActiveSessionMessage) (core.SessionSnapshot, error) {
	if q == nil || q.reader == nil {
		return core.SessionSnapshot{}, queryDependencyError("query: session reader is required")
	}
	snapshot, ok := q.reader.ActiveSession(ctx)
	if !ok {
		return core.SessionSnapshot{}, queryNoSessionError()
	}
	return snapshot, nil
}

type ListErrorEventsQuery struct {
	reader ErrorEventReader
}

func NewListErrorEventsQuery(reader ErrorEventReader) *ListErrorEventsQuery {
	return &ListErrorEventsQuery{reader: reader}
}

func (q *ListErrorEventsQuery) Query(ctx context.Context, msg ListErrorEventsMessage) ([]core.ErrorEvent, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: error event reader is required")
	}
	return q.reader.ErrorEvents(ctx, msg.Filter)
}
