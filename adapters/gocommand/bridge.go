package gocommand

import (
	"fmt"

	"github.com/goliatone/go-command/runner"
	idcommand "github.com/goliatone/go-idcapture/command"
	"github.com/goliatone/go-idcapture/core"
	"github.com/goliatone/go-idcapture/query"
)

// BridgeRuntime is the surface of core.Bridge exposed over the bus.
type BridgeRuntime interface {
	idcommand.BridgeService
	query.SessionReader
	query.ErrorEventReader
}

// MountBridge registers the bridge commands and queries on the bus. On
// failure everything mounted so far is unsubscribed.
func (b *Bus) MountBridge(bridge BridgeRuntime, runnerOpts ...runner.Option) (err error) {
	if bridge == nil {
		return fmt.Errorf("gocommand: bridge is required")
	}
	defer func() {
		if err != nil {
			b.Close()
		}
	}()

	if err = RegisterCommand[idcommand.InitializeMessage](b, idcommand.NewInitializeCommand(bridge), runnerOpts...); err != nil {
		return err
	}
	if err = RegisterCommand[idcommand.StartMessage](b, idcommand.NewStartCommand(bridge), runnerOpts...); err != nil {
		return err
	}
	if err = RegisterCommand[idcommand.EnableDocumentReadingMessage](b, idcommand.NewEnableDocumentReadingCommand(bridge), runnerOpts...); err != nil {
		return err
	}
	if err = RegisterCommand[idcommand.PermissionResultMessage](b, idcommand.NewPermissionResultCommand(bridge), runnerOpts...); err != nil {
		return err
	}
	if err = RegisterQuery[query.ActiveSessionMessage, core.SessionSnapshot](b, query.NewActiveSessionQuery(bridge), runnerOpts...); err != nil {
		return err
	}
	return RegisterQuery[query.ListErrorEventsMessage, []core.ErrorEvent](b, query.NewListErrorEventsQuery(bridge), runnerOpts...)
}
