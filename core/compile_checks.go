package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ PendingPermissionStore = (*MemoryPendingPermissionStore)(nil)
	_ EventJournal           = (*MemoryEventJournal)(nil)
	_ RawConfigLoader        = YAMLConfigLoader{}
	_ ConfigProvider         = (*CfgxConfigProvider)(nil)
	_ OptionsResolver        = GoOptionsResolver{}

	_ PlatformProbe       = PlatformProbeFunc(nil)
	_ SDKFactory          = SDKFactoryFunc(nil)
	_ PermissionProbe     = PermissionProbeFunc(nil)
	_ PermissionRequester = PermissionRequesterFunc(nil)
	_ EventEmitter        = EventEmitterFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
