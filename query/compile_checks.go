package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-idcapture/core"
)

var (
	_ gocmd.Querier[ActiveSessionMessage, core.SessionSnapshot]  = (*ActiveSessionQuery)(nil)
	_ gocmd.Querier[ListErrorEventsMessage, []core.ErrorEvent] = (*ListErrorEventsQuery)(nil)

	_ SessionReader    = (*core.Bridge)(nil)
	_ ErrorEventReader = (*core.Bridge)(nil)
)
