package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-idcapture/core"
	"github.com/google/uuid"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
	"github.com/goliatone/go-job/queue/worker"
)

// JobIDHostEvent tags queued host events. The event name travels in
// ScriptPath and the payload in Parameters.
const JobIDHostEvent = "idcapture.host_event"

// RetryPolicy defines queue retry bounds to avoid unbounded retry loops.
type RetryPolicy struct {
	MaxAttempts     int
	MaxDelay        time.Duration
	DeadLetterOnMax bool
}

// NormalizeAttempt enforces bounded retry behavior for a nack operation. An
// empty disposition means retry. A retry at MaxAttempts becomes a dead letter
// when DeadLetterOnMax is set and a plain failure otherwise.
func (p RetryPolicy) NormalizeAttempt(opts queue.NackOptions, attempt int) queue.NackOptions {
	out := opts
	out.Reason = strings.TrimSpace(out.Reason)
	if out.Delay < 0 {
		out.Delay = 0
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	if out.Disposition == "" {
		out.Disposition = queue.NackDispositionRetry
	}
	if out.Disposition == queue.NackDispositionRetry && p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		if p.DeadLetterOnMax {
			out.Disposition = queue.NackDispositionDeadLetter
		} else {
			out.Disposition = queue.NackDispositionFailed
		}
	}
	if out.Disposition != queue.NackDispositionRetry {
		out.Delay = 0
	}
	return out
}

// HostEventMessage builds the queue message for one host event.
func HostEventMessage(name string, payload map[string]any, idempotencyKey string) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          JobIDHostEvent,
		ScriptPath:     strings.TrimSpace(name),
		Parameters:     copyAnyMap(payload),
		IdempotencyKey: strings.TrimSpace(idempotencyKey),
	}
}

// HostEventFromMessage recovers the event name and payload from a queued
// message.
func HostEventFromMessage(msg *job.ExecutionMessage) (string, map[string]any, error) {
	if msg == nil {
		return "", nil, fmt.Errorf("gojob: execution message is required")
	}
	if strings.TrimSpace(msg.JobID) != JobIDHostEvent {
		return "", nil, fmt.Errorf("gojob: unexpected job id %q", msg.JobID)
	}
	name := strings.TrimSpace(msg.ScriptPath)
	if name == "" {
		return "", nil, fmt.Errorf("gojob: host event name is required")
	}
	return name, copyAnyMap(msg.Parameters), nil
}

// QueueEventEmitter is a core.EventEmitter that hands events to a go-job
// queue instead of calling the host directly. A Relay drains the queue on the
// host side.
type QueueEventEmitter struct {
	enqueuer queue.Enqueuer
	newKey   func() string
}

func NewQueueEventEmitter(enqueuer queue.Enqueuer) *QueueEventEmitter {
	return &QueueEventEmitter{enqueuer: enqueuer, newKey: uuid.NewString}
}

func (e *QueueEventEmitter) Emit(ctx context.Context, name string, payload map[string]any) error {
	if e == nil || e.enqueuer == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("gojob: host event name is required")
	}
	_, err := e.enqueuer.Enqueue(ctx, HostEventMessage(name, payload, e.newKey()))
	return err
}

// Relay moves queued host events to the real host emitter, one delivery per
// RelayOnce call. Failed emits are nacked through the retry policy.
type Relay struct {
	dequeuer queue.Dequeuer
	emitter  core.EventEmitter
	policy   RetryPolicy
	hook     worker.Hook
	now      func() time.Time

	mu       sync.Mutex
	attempts map[string]int
}

type RelayOption func(*Relay)

func WithRetryPolicy(policy RetryPolicy) RelayOption {
	return func(r *Relay) {
		r.policy = policy
	}
}

func WithWorkerHook(hook worker.Hook) RelayOption {
	return func(r *Relay) {
		r.hook = hook
	}
}

func NewRelay(dequeuer queue.Dequeuer, emitter core.EventEmitter, opts ...RelayOption) *Relay {
	relay := &Relay{
		dequeuer: dequeuer,
		emitter:  emitter,
		now:      func() time.Time { return time.Now().UTC() },
		attempts: map[string]int{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(relay)
		}
	}
	return relay
}

// RelayOnce dequeues one delivery and forwards it. Malformed messages are
// dead-lettered. The returned error is the emit or queue failure, if any.
func (r *Relay) RelayOnce(ctx context.Context) error {
	if r == nil || r.dequeuer == nil {
		return fmt.Errorf("gojob: dequeuer is not configured")
	}
	if r.emitter == nil {
		return fmt.Errorf("gojob: host emitter is not configured")
	}
	delivery, err := r.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	msg := delivery.Message()
	name, payload, err := HostEventFromMessage(msg)
	if err != nil {
		r.onFailure(ctx, worker.Event{Message: msg, Delivery: delivery, Err: err})
		if nackErr := delivery.Nack(ctx, queue.NackOptions{Disposition: queue.NackDispositionDeadLetter, Reason: err.Error()}); nackErr != nil {
			return nackErr
		}
		return err
	}

	key := attemptKey(msg)
	attempt := r.nextAttempt(key)
	event := worker.Event{Message: msg, Delivery: delivery, Attempt: attempt, StartedAt: r.now()}
	r.onStart(ctx, event)

	emitErr := r.emitter.Emit(ctx, name, payload)
	event.Duration = r.now().Sub(event.StartedAt)
	if emitErr == nil {
		r.clearAttempt(key)
		r.onSuccess(ctx, event)
		return delivery.Ack(ctx)
	}

	event.Err = emitErr
	opts := r.policy.NormalizeAttempt(queue.NackOptions{Disposition: queue.NackDispositionRetry, Reason: emitErr.Error()}, attempt)
	event.Delay = opts.Delay
	if opts.Disposition == queue.NackDispositionRetry {
		r.onRetry(ctx, event)
	} else {
		r.clearAttempt(key)
		r.onFailure(ctx, event)
	}
	if err := delivery.Nack(ctx, opts); err != nil {
		return err
	}
	return emitErr
}

func (r *Relay) nextAttempt(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[key]++
	return r.attempts[key]
}

func (r *Relay) clearAttempt(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, key)
}

func (r *Relay) onStart(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnStart(ctx, event)
	}
}

func (r *Relay) onSuccess(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnSuccess(ctx, event)
	}
}

func (r *Relay) onFailure(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnFailure(ctx, event)
	}
}

func (r *Relay) onRetry(ctx context.Context, event worker.Event) {
	if r.hook != nil {
		r.hook.OnRetry(ctx, event)
	}
}

func attemptKey(msg *job.ExecutionMessage) string {
	if key := strings.TrimSpace(msg.IdempotencyKey); key != "" {
		return key
	}
	return msg.ScriptPath
}

// LoggingHook reports relay lifecycle events through a go-job logger.
type LoggingHook struct {
	logger job.Logger
}

func NewLoggingHook(logger job.Logger) *LoggingHook {
	return &LoggingHook{logger: logger}
}

func (h *LoggingHook) OnStart(_ context.Context, event worker.Event) {
	h.info("host event relay started", event)
}

func (h *LoggingHook) OnSuccess(_ context.Context, event worker.Event) {
	h.info("host event relayed", event)
}

func (h *LoggingHook) OnFailure(_ context.Context, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Error("host event relay failed", eventArgs(event)...)
}

func (h *LoggingHook) OnRetry(_ context.Context, event worker.Event) {
	h.info("host event relay retrying", event)
}

func (h *LoggingHook) info(message string, event worker.Event) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Info(message, eventArgs(event)...)
}

func eventArgs(event worker.Event) []any {
	msg := event.Message
	if msg == nil && event.Delivery != nil {
		msg = event.Delivery.Message()
	}
	args := []any{"attempt", event.Attempt, "duration_ms", event.Duration.Milliseconds()}
	if msg != nil {
		args = append(args, "job_id", msg.JobID, "event", msg.ScriptPath, "idempotency_key", msg.IdempotencyKey)
	}
	if event.Delay > 0 {
		args = append(args, "delay_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	return args
}

func copyAnyMap(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

var (
	_ core.EventEmitter = (*QueueEventEmitter)(nil)
	_ worker.Hook       = (*LoggingHook)(nil)
)
