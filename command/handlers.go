package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-idcapture/core"
)

// BridgeService is the mutating surface of core.Bridge. Failures returned
// from it have already been reported to the host as EventError.
type BridgeService interface {
	Initialize(ctx context.Context, req core.InitializeRequest) (core.SessionHandle, error)
	Start(ctx context.Context) (core.LaunchOutcome, error)
	EnableDocumentReadingFeature(ctx context.Context) error
	HandlePermissionResult(ctx context.Context, result core.PermissionResult) (core.LaunchOutcome, error)
}

type InitializeCommand struct {
	service BridgeService
}

func NewInitializeCommand(service BridgeService) *InitializeCommand {
	return &InitializeCommand{service: service}
}

func (c *InitializeCommand) Execute(ctx context.Context, msg InitializeMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: initialize service is required")
	}
	out, err := c.service.Initialize(ctx, msg.Request())
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type StartCommand struct {
	service BridgeService
}

func NewStartCommand(service BridgeService) *StartCommand {
	return &StartCommand{service: service}
}

// Execute stores the launch outcome even when the start failed, so callers
// collecting results can tell a denial from an SDK failure.
func (c *StartCommand) Execute(ctx context.Context, _ StartMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: start service is required")
	}
	outcome, err := c.service.Start(ctx)
	storeResult(ctx, outcome)
	return err
}

type EnableDocumentReadingCommand struct {
	service BridgeService
}

func NewEnableDocumentReadingCommand(service BridgeService) *EnableDocumentReadingCommand {
	return &EnableDocumentReadingCommand{service: service}
}

func (c *EnableDocumentReadingCommand) Execute(ctx context.Context, _ EnableDocumentReadingMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: document reading service is required")
	}
	return c.service.EnableDocumentReadingFeature(ctx)
}

type PermissionResultCommand struct {
	service BridgeService
}

func NewPermissionResultCommand(service BridgeService) *PermissionResultCommand {
	return &PermissionResultCommand{service: service}
}

func (c *PermissionResultCommand) Execute(ctx context.Context, msg PermissionResultMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: permission result service is required")
	}
	outcome, err := c.service.HandlePermissionResult(ctx, msg.Result())
	storeResult(ctx, outcome)
	return err
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
