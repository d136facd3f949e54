package command

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-idcapture/core"
)

var (
	_ gocmd.Commander[InitializeMessage]            = (*InitializeCommand)(nil)
	_ gocmd.Commander[StartMessage]                 = (*StartCommand)(nil)
	_ gocmd.Commander[EnableDocumentReadingMessage] = (*EnableDocumentReadingCommand)(nil)
	_ gocmd.Commander[PermissionResultMessage]      = (*PermissionResultCommand)(nil)

	_ BridgeService = (*core.Bridge)(nil)
)
