package sqlstore

import "github.com/goliatone/go-idcapture/core"

var (
	_ core.PendingPermissionStore = (*PermissionRequestStore)(nil)
	_ core.PendingPermissionStore = (*CachedPermissionRequestStore)(nil)
	_ core.EventJournal           = (*EventJournal)(nil)
)
