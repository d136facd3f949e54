package gocommand

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/goliatone/go-command"
	commanddispatcher "github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-command/runner"
	jobqueuecommand "github.com/goliatone/go-job/queue/command"
)

// ValidateMessageContract enforces Type() plus optional Validate() contract.
func ValidateMessageContract(msg any) error {
	if err := command.ValidateMessage(msg); err != nil {
		return err
	}
	m, ok := msg.(command.Message)
	if !ok {
		return fmt.Errorf("gocommand: message must implement Type() string")
	}
	if strings.TrimSpace(m.Type()) == "" {
		return fmt.Errorf("gocommand: message type is required")
	}
	return nil
}

// Bus pairs a command registry with the dispatcher subscriptions made through
// it, so a host can tear everything down with Close.
type Bus struct {
	registry *command.Registry

	mu            sync.Mutex
	subscriptions []commanddispatcher.Subscription
	closed        bool
}

func NewBus(registry *command.Registry) *Bus {
	if registry == nil {
		registry = command.NewRegistry()
	}
	return &Bus{registry: registry}
}

func (b *Bus) Registry() *command.Registry {
	if b == nil {
		return nil
	}
	return b.registry
}

func (b *Bus) AddResolver(key string, resolver command.Resolver) error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.AddResolver(strings.TrimSpace(key), resolver)
}

// MirrorToQueue registers the go-job resolver so every command on the bus is
// also reachable from the job queue registry after Initialize.
func (b *Bus) MirrorToQueue(key string, queueRegistry *jobqueuecommand.Registry) error {
	if queueRegistry == nil {
		return fmt.Errorf("gocommand: queue registry is required")
	}
	return b.AddResolver(key, jobqueuecommand.QueueResolver(queueRegistry))
}

func (b *Bus) HasResolver(key string) bool {
	if b == nil || b.registry == nil {
		return false
	}
	return b.registry.HasResolver(strings.TrimSpace(key))
}

func (b *Bus) Initialize() error {
	if b == nil || b.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	return b.registry.Initialize()
}

// Close unsubscribes every handler registered through the bus. It is safe to
// call more than once.
func (b *Bus) Close() {
	if b == nil {
		return
	}
	b.mu.Lock()
	subscriptions := b.subscriptions
	b.subscriptions = nil
	b.closed = true
	b.mu.Unlock()

	for i := len(subscriptions) - 1; i >= 0; i-- {
		if subscriptions[i] != nil {
			subscriptions[i].Unsubscribe()
		}
	}
}

func (b *Bus) track(subscription commanddispatcher.Subscription) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return fmt.Errorf("gocommand: bus is closed")
	}
	b.subscriptions = append(b.subscriptions, subscription)
	return nil
}

// RegisterCommand registers cmd with the bus registry and subscribes it on the
// dispatcher. A registry failure rolls the subscription back.
func RegisterCommand[T any](bus *Bus, cmd command.Commander[T], runnerOpts ...runner.Option) error {
	if bus == nil || bus.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if cmd == nil {
		return fmt.Errorf("gocommand: command is required")
	}
	subscription := commanddispatcher.SubscribeCommand(cmd, runnerOpts...)
	if err := bus.registry.RegisterCommand(cmd); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return err
	}
	return bus.track(subscription)
}

func RegisterQuery[T any, R any](bus *Bus, qry command.Querier[T, R], runnerOpts ...runner.Option) error {
	if bus == nil || bus.registry == nil {
		return fmt.Errorf("gocommand: registry is not configured")
	}
	if qry == nil {
		return fmt.Errorf("gocommand: query is required")
	}
	subscription := commanddispatcher.SubscribeQuery(qry, runnerOpts...)
	if err := bus.registry.RegisterCommand(qry); err != nil {
		if subscription != nil {
			subscription.Unsubscribe()
		}
		return err
	}
	return bus.track(subscription)
}

func Dispatch[T any](ctx context.Context, msg T) error {
	if err := ValidateMessageContract(msg); err != nil {
		return err
	}
	return commanddispatcher.Dispatch(ctx, msg)
}

// DispatchResult dispatches msg and returns whatever the handler stored in
// the result collector.
func DispatchResult[T any, R any](ctx context.Context, msg T) (R, bool, error) {
	collector := command.NewResult[R]()
	err := Dispatch(command.ContextWithResult(ctx, collector), msg)
	value, ok := collector.Load()
	return value, ok, err
}

func Query[T any, R any](ctx context.Context, msg T) (R, error) {
	if err := ValidateMessageContract(msg); err != nil {
		var zero R
		return zero, err
	}
	return commanddispatcher.Query[T, R](ctx, msg)
}
