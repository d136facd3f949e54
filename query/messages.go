package query

import (
	"github.com/goliatone/go-idcapture/core"
)

const (
	TypeActiveSession   = "idcapture.query.session.active"
	TypeListErrorEvents = "idcapture.query.error_events.list"

	maxErrorEventsLimit = 500
)

type ActiveSessionMessage struct{}

func (ActiveSessionMessage) Type() string { return TypeActiveSession }

type ListErrorEventsMessage struct {
	Filter core.ErrorEventFilter
}

func (ListErrorEventsMessage) Type() string { return TypeListErrorEvents }

func (m ListErrorEventsMessage) Validate() error {
	if m.Filter.Limit < 0 {
		return queryValidationError("limit", "limit must be >= 0")
	}
	if m.Filter.Limit > maxErrorEventsLimit {
		return queryValidationError("limit", "limit must be <= 500")
	}
	return nil
}
