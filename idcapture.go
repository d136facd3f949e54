package idcapture

import "github.com/goliatone/go-idcapture/core"

type Config = core.Config

type JournalConfig = core.JournalConfig

type Option = core.Option

type Bridge = core.Bridge

type BridgeDependencies = core.BridgeDependencies

type OptionsBag = core.OptionsBag
type InitializeRequest = core.InitializeRequest
type CredentialsInput = core.CredentialsInput
type PermissionResult = core.PermissionResult
type SessionHandle = core.SessionHandle
type SessionSnapshot = core.SessionSnapshot
type LaunchOutcome = core.LaunchOutcome
type ErrorEvent = core.ErrorEvent
type ErrorEventFilter = core.ErrorEventFilter

type PlatformProbe = core.PlatformProbe
type SDKFactory = core.SDKFactory
type SDK = core.SDK
type PermissionProbe = core.PermissionProbe
type PermissionRequester = core.PermissionRequester
type EventEmitter = core.EventEmitter
type PendingPermissionStore = core.PendingPermissionStore
type EventJournal = core.EventJournal

const EventError = core.EventError

var (
	WithLogger                 = core.WithLogger
	WithLoggerProvider         = core.WithLoggerProvider
	WithMetricsRecorder        = core.WithMetricsRecorder
	WithErrorMapper            = core.WithErrorMapper
	WithConfigProvider         = core.WithConfigProvider
	WithOptionsResolver        = core.WithOptionsResolver
	WithPlatformProbe          = core.WithPlatformProbe
	WithSDKFactory             = core.WithSDKFactory
	WithPermissionProbe        = core.WithPermissionProbe
	WithPermissionRequester    = core.WithPermissionRequester
	WithEventEmitter           = core.WithEventEmitter
	WithPendingPermissionStore = core.WithPendingPermissionStore
	WithEventJournal           = core.WithEventJournal
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewBridge(cfg Config, opts ...Option) (*Bridge, error) {
	return core.NewBridge(cfg, opts...)
}
