package core

import (
	"context"

	glog "github.com/goliatone/go-logger/glog"
)

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

// PlatformProbe reports whether the device can run the capture SDK.
type PlatformProbe interface {
	Supported(ctx context.Context) bool
}

type PlatformProbeFunc func(ctx context.Context) bool

func (f PlatformProbeFunc) Supported(ctx context.Context) bool {
	if f == nil {
		return true
	}
	return f(ctx)
}

// SDKFactory creates the underlying SDK instance. A returned error means the
// SDK itself refused to run on this platform.
type SDKFactory interface {
	Create(ctx context.Context, credentials Credentials) (SDK, error)
}

type SDKFactoryFunc func(ctx context.Context, credentials Credentials) (SDK, error)

func (f SDKFactoryFunc) Create(ctx context.Context, credentials Credentials) (SDK, error) {
	return f(ctx, credentials)
}

// SDK is the opaque capture SDK handle. Start errors wrapping
// ErrSDKMissingPermission are reported to the host verbatim.
type SDK interface {
	Configure(ctx context.Context, cfg SessionConfig) error
	RequiredPermissions() []string
	Start(ctx context.Context) error
}

type PermissionProbe interface {
	Granted(ctx context.Context, permission string) bool
}

type PermissionProbeFunc func(ctx context.Context, permission string) bool

func (f PermissionProbeFunc) Granted(ctx context.Context, permission string) bool {
	return f(ctx, permission)
}

// PermissionRequester issues the OS permission prompt. The outcome arrives
// later through Bridge.HandlePermissionResult tagged with the same code.
type PermissionRequester interface {
	RequestPermissions(ctx context.Context, permissions []string, code int) error
}

type PermissionRequesterFunc func(ctx context.Context, permissions []string, code int) error

func (f PermissionRequesterFunc) RequestPermissions(ctx context.Context, permissions []string, code int) error {
	return f(ctx, permissions, code)
}

// EventEmitter is the one-way host event channel.
type EventEmitter interface {
	Emit(ctx context.Context, name string, payload map[string]any) error
}

type EventEmitterFunc func(ctx context.Context, name string, payload map[string]any) error

func (f EventEmitterFunc) Emit(ctx context.Context, name string, payload map[string]any) error {
	return f(ctx, name, payload)
}

// PendingPermissionStore holds the outstanding permission request per code.
// Take returns and removes the request in one step; of two concurrent Take
// calls for the same code at most one succeeds, the other gets
// ErrPendingPermissionNotFound.
type PendingPermissionStore interface {
	Save(ctx context.Context, req PermissionRequest) error
	Get(ctx context.Context, code int) (PermissionRequest, error)
	Take(ctx context.Context, code int) (PermissionRequest, error)
	Delete(ctx context.Context, code int) error
}

type EventJournal interface {
	Record(ctx context.Context, event ErrorEvent) error
	List(ctx context.Context, filter ErrorEventFilter) ([]ErrorEvent, error)
}
