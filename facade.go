package idcapture

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	idcommand "github.com/goliatone/go-idcapture/command"
	"github.com/goliatone/go-idcapture/core"
	idquery "github.com/goliatone/go-idcapture/query"
)

// BridgeRuntime is the bridge surface the facade drives.
type BridgeRuntime interface {
	idcommand.BridgeService
	idquery.SessionReader
	idquery.ErrorEventReader
}

type Commands struct {
	Initialize            *idcommand.InitializeCommand
	Start                 *idcommand.StartCommand
	EnableDocumentReading *idcommand.EnableDocumentReadingCommand
	PermissionResult      *idcommand.PermissionResultCommand
}

type Queries struct {
	ActiveSession   *idquery.ActiveSessionQuery
	ListErrorEvents *idquery.ListErrorEventsQuery
}

// Facade exposes the host-callable surface. Host methods return nothing:
// every failure has already reached the host as an EventError.
type Facade struct {
	bridge   BridgeRuntime
	commands Commands
	queries  Queries
	logger   core.Logger
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	logger core.Logger
}

// WithFacadeLogger logs dropped host call errors at debug level.
func WithFacadeLogger(logger core.Logger) FacadeOption {
	return func(options *facadeOptions) {
		options.logger = logger
	}
}

func NewFacade(bridge BridgeRuntime, opts ...FacadeOption) (*Facade, error) {
	if bridge == nil {
		return nil, fmt.Errorf("idcapture: bridge is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	facade := &Facade{bridge: bridge, logger: cfg.logger}
	facade.commands = Commands{
		Initialize:            idcommand.NewInitializeCommand(bridge),
		Start:                 idcommand.NewStartCommand(bridge),
		EnableDocumentReading: idcommand.NewEnableDocumentReadingCommand(bridge),
		PermissionResult:      idcommand.NewPermissionResultCommand(bridge),
	}
	facade.queries = Queries{
		ActiveSession:   idquery.NewActiveSessionQuery(bridge),
		ListErrorEvents: idquery.NewListErrorEventsQuery(bridge),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Bridge() BridgeRuntime {
	if f == nil {
		return nil
	}
	return f.bridge
}

// Initialize is the host initNetverify entry point.
func (f *Facade) Initialize(ctx context.Context, apiToken, apiSecret, dataCenter string, options OptionsBag) {
	if f == nil {
		return
	}
	f.drop(ctx, idcommand.TypeInitialize, f.commands.Initialize.Execute(ctx, idcommand.InitializeMessage{
		APIToken:   apiToken,
		APISecret:  apiSecret,
		DataCenter: dataCenter,
		Options:    options,
	}))
}

// Start is the host startNetverify entry point.
func (f *Facade) Start(ctx context.Context) {
	if f == nil {
		return
	}
	f.drop(ctx, idcommand.TypeStart, f.commands.Start.Execute(ctx, idcommand.StartMessage{}))
}

func (f *Facade) EnableDocumentReadingFeature(ctx context.Context) {
	if f == nil {
		return
	}
	f.drop(ctx, idcommand.TypeEnableDocumentReading, f.commands.EnableDocumentReading.Execute(ctx, idcommand.EnableDocumentReadingMessage{}))
}

// OnRequestPermissionsResult forwards the OS callback as-is. Malformed
// callbacks are resolved by the bridge, not rejected here.
func (f *Facade) OnRequestPermissionsResult(ctx context.Context, requestCode int, permissions []string, granted []bool) {
	if f == nil {
		return
	}
	f.drop(ctx, idcommand.TypePermissionResult, f.commands.PermissionResult.Execute(ctx, idcommand.PermissionResultMessage{
		RequestCode: requestCode,
		Permissions: permissions,
		Granted:     granted,
	}))
}

func (f *Facade) drop(ctx context.Context, operation string, err error) {
	if err == nil || f.logger == nil {
		return
	}
	f.logger.WithContext(ctx).Debug("host call failed", "operation", operation, "error", err.Error(), "text_code", textCode(err))
}

func textCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil && richErr.TextCode != "" {
		return richErr.TextCode
	}
	return core.ErrorInternal
}
