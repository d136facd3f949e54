package core

import (
	"context"
	"sync"
	"testing"
)

type fakeSDK struct {
	mu         sync.Mutex
	required   []string
	startErr   error
	configErr  error
	configured []SessionConfig
	startCalls int
}

func (s *fakeSDK) Configure(_ context.Context, cfg SessionConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configured = append(s.configured, cfg.Clone())
	return s.configErr
}

func (s *fakeSDK) RequiredPermissions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.required...)
}

func (s *fakeSDK) Start(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startCalls++
	return s.startErr
}

func (s *fakeSDK) starts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startCalls
}

func (s *fakeSDK) lastConfig() (SessionConfig, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.configured) == 0 {
		return SessionConfig{}, false
	}
	return s.configured[len(s.configured)-1].Clone(), true
}

type fakeSDKFactory struct {
	mu       sync.Mutex
	created  []Credentials
	sdks     []*fakeSDK
	err      error
	required []string
}

func (f *fakeSDKFactory) Create(_ context.Context, credentials Credentials) (SDK, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, credentials)
	if f.err != nil {
		return nil, f.err
	}
	sdk := &fakeSDK{required: append([]string(nil), f.required...)}
	f.sdks = append(f.sdks, sdk)
	return sdk, nil
}

func (f *fakeSDKFactory) last() *fakeSDK {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sdks) == 0 {
		return nil
	}
	return f.sdks[len(f.sdks)-1]
}

func (f *fakeSDKFactory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

type emittedEvent struct {
	name    string
	payload map[string]any
}

type captureEmitter struct {
	mu     sync.Mutex
	events []emittedEvent
	err    error
}

func (e *captureEmitter) Emit(_ context.Context, name string, payload map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, emittedEvent{name: name, payload: cloneFieldMap(payload)})
	return e.err
}

func (e *captureEmitter) snapshot() []emittedEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]emittedEvent, len(e.events))
	copy(out, e.events)
	return out
}

type permissionRequestCall struct {
	permissions []string
	code        int
}

type fakePermissions struct {
	mu       sync.Mutex
	granted  map[string]bool
	probed   int
	requests []permissionRequestCall
	err      error
}

func newFakePermissions(granted ...string) *fakePermissions {
	set := map[string]bool{}
	for _, permission := range granted {
		set[permission] = true
	}
	return &fakePermissions{granted: set}
}

func (p *fakePermissions) Granted(_ context.Context, permission string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed++
	return p.granted[permission]
}

func (p *fakePermissions) RequestPermissions(_ context.Context, permissions []string, code int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, permissionRequestCall{
		permissions: append([]string(nil), permissions...),
		code:        code,
	})
	return p.err
}

func (p *fakePermissions) requestCalls() []permissionRequestCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]permissionRequestCall, len(p.requests))
	copy(out, p.requests)
	return out
}

func (p *fakePermissions) probes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.probed
}

type bridgeFixture struct {
	bridge      *Bridge
	sdks        *fakeSDKFactory
	emitter     *captureEmitter
	permissions *fakePermissions
	journal     *MemoryEventJournal
	supported   bool
}

func newBridgeFixture(t *testing.T, required []string, granted []string, opts ...Option) *bridgeFixture {
	t.Helper()
	fixture := &bridgeFixture{
		sdks:        &fakeSDKFactory{required: required},
		emitter:     &captureEmitter{},
		permissions: newFakePermissions(granted...),
		journal:     NewMemoryEventJournal(),
		supported:   true,
	}
	base := []Option{
		WithLogger(stubLogger{}),
		WithLoggerProvider(stubLoggerProvider{logger: stubLogger{}}),
		WithSDKFactory(fixture.sdks),
		WithPlatformProbe(PlatformProbeFunc(func(context.Context) bool { return fixture.supported })),
		WithPermissionProbe(fixture.permissions),
		WithPermissionRequester(fixture.permissions),
		WithEventEmitter(fixture.emitter),
		WithEventJournal(fixture.journal),
	}
	bridge, err := NewBridge(DefaultConfig(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("new bridge: %v", err)
	}
	fixture.bridge = bridge
	return fixture
}

func validInitializeRequest(options OptionsBag) InitializeRequest {
	return InitializeRequest{
		Credentials: CredentialsInput{APIToken: "token", APISecret: "secret", DataCenter: "us"},
		Options:     options,
	}
}

func errorMessages(events []emittedEvent) []string {
	out := make([]string, 0, len(events))
	for _, event := range events {
		message, _ := event.payload[ErrorMessageField].(string)
		out = append(out, message)
	}
	return out
}

type stubLogger struct{}

func (stubLogger) Trace(string, ...any) {}
func (stubLogger) Debug(string, ...any) {}
func (stubLogger) Info(string, ...any)  {}
func (stubLogger) Warn(string, ...any)  {}
func (stubLogger) Error(string, ...any) {}
func (stubLogger) Fatal(string, ...any) {}
func (s stubLogger) WithContext(context.Context) Logger {
	return s
}

type stubLoggerProvider struct {
	logger Logger
}

func (s stubLoggerProvider) GetLogger(string) Logger {
	return s.logger
}

type mapRawLoader struct {
	values map[string]any
}

func (l mapRawLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.values))
	for key, value := range l.values {
		out[key] = value
	}
	return out, nil
}

func boolPtr(value bool) *bool {
	return &value
}

func stringPtr(value string) *string {
	return &value
}
