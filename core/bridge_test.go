package core

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func TestBridge_StartWithoutInitializeReportsOnce(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, nil)

	outcome, err := fixture.bridge.Start(context.Background())
	if outcome != LaunchOutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", outcome)
	}
	if !HasTextCode(err, ErrorNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}

	events := fixture.emitter.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected exactly one host event, got %d", len(events))
	}
	if events[0].name != EventError {
		t.Fatalf("expected %s, got %s", EventError, events[0].name)
	}
	if got := errorMessages(events)[0]; got != MessageNotInitialized {
		t.Fatalf("expected %q, got %q", MessageNotInitialized, got)
	}
	if fixture.permissions.probes() != 0 || len(fixture.permissions.requestCalls()) != 0 {
		t.Fatalf("expected no permission activity without a session")
	}
	if fixture.sdks.calls() != 0 {
		t.Fatalf("expected no sdk to be created")
	}
}

func TestBridge_MissingCredentialsCreatesNoSession(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	ctx := context.Background()

	_, err := fixture.bridge.Initialize(ctx, InitializeRequest{
		Credentials: CredentialsInput{APIToken: "", APISecret: "secret", DataCenter: "us"},
		Options:     OptionsBag{},
	})
	if !HasTextCode(err, ErrorMissingCredentials) {
		t.Fatalf("expected missing credentials, got %v", err)
	}
	if _, ok := fixture.bridge.ActiveSession(ctx); ok {
		t.Fatalf("expected no active session")
	}

	if _, err := fixture.bridge.Start(ctx); !HasTextCode(err, ErrorNotInitialized) {
		t.Fatalf("expected start to report not initialized, got %v", err)
	}
	want := []string{MessageMissingCredentials, MessageNotInitialized}
	if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected messages %#v, got %#v", want, got)
	}
}

func TestBridge_UnsupportedPlatform(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	fixture.supported = false

	_, err := fixture.bridge.Initialize(context.Background(), validInitializeRequest(nil))
	if !HasTextCode(err, ErrorUnsupportedPlatform) {
		t.Fatalf("expected unsupported platform, got %v", err)
	}
	if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, []string{MessageUnsupportedPlatform}) {
		t.Fatalf("unexpected messages %#v", got)
	}
}

func TestBridge_PreGrantedStartLaunchesSynchronously(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, []string{permissionCamera})
	ctx := context.Background()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	outcome, err := fixture.bridge.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if outcome != LaunchOutcomeLaunched {
		t.Fatalf("expected launched, got %s", outcome)
	}
	if fixture.sdks.last().starts() != 1 {
		t.Fatalf("expected one launch, got %d", fixture.sdks.last().starts())
	}
	if len(fixture.permissions.requestCalls()) != 0 {
		t.Fatalf("expected no permission request")
	}
	if len(fixture.emitter.snapshot()) != 0 {
		t.Fatalf("expected no error events")
	}
}

func TestBridge_MissingPermissionGrantLaunchesOnce(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera, permissionStorage}, []string{permissionStorage})
	ctx := context.Background()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	outcome, err := fixture.bridge.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if outcome != LaunchOutcomeAwaitingGrant {
		t.Fatalf("expected awaiting grant, got %s", outcome)
	}
	calls := fixture.permissions.requestCalls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(calls))
	}
	if !reflect.DeepEqual(calls[0].permissions, []string{permissionCamera}) || calls[0].code != DefaultPermissionRequestCode {
		t.Fatalf("unexpected request %#v", calls[0])
	}
	sdk := fixture.sdks.last()
	if sdk.starts() != 0 {
		t.Fatalf("expected no launch before the callback")
	}

	snapshot, ok := fixture.bridge.ActiveSession(ctx)
	if !ok || !snapshot.AwaitingGrant || !reflect.DeepEqual(snapshot.PendingPermissions, []string{permissionCamera}) {
		t.Fatalf("expected snapshot to show the pending grant, got %#v", snapshot)
	}

	outcome, err = fixture.bridge.HandlePermissionResult(ctx, PermissionResult{
		Code:        DefaultPermissionRequestCode,
		Permissions: []string{permissionCamera},
		Granted:     []bool{true},
	})
	if err != nil {
		t.Fatalf("permission result: %v", err)
	}
	if outcome != LaunchOutcomeLaunched {
		t.Fatalf("expected launched, got %s", outcome)
	}
	if sdk.starts() != 1 {
		t.Fatalf("expected exactly one launch, got %d", sdk.starts())
	}
	if len(fixture.emitter.snapshot()) != 0 {
		t.Fatalf("expected no error events")
	}
	if snapshot, _ := fixture.bridge.ActiveSession(ctx); snapshot.AwaitingGrant {
		t.Fatalf("expected pending grant to be consumed")
	}
}

func TestBridge_MissingPermissionDenialReportsOnce(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, nil)
	ctx := context.Background()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := fixture.bridge.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	outcome, err := fixture.bridge.HandlePermissionResult(ctx, PermissionResult{
		Code:        DefaultPermissionRequestCode,
		Permissions: []string{permissionCamera},
		Granted:     []bool{false},
	})
	if outcome != LaunchOutcomeDenied {
		t.Fatalf("expected denied, got %s", outcome)
	}
	if !HasTextCode(err, ErrorPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
	events := fixture.emitter.snapshot()
	if len(events) != 1 {
		t.Fatalf("expected exactly one error event, got %d", len(events))
	}
	if fixture.sdks.last().starts() != 0 {
		t.Fatalf("expected no launch after denial")
	}

	journaled, err := fixture.bridge.ErrorEvents(ctx, ErrorEventFilter{})
	if err != nil {
		t.Fatalf("error events: %v", err)
	}
	if len(journaled) != 1 || journaled[0].TextCode != ErrorPermissionDenied {
		t.Fatalf("expected journaled denial, got %#v", journaled)
	}
}

func TestBridge_StaleCallbackAfterReinitialize(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, nil)
	ctx := context.Background()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := fixture.bridge.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	first := fixture.sdks.last()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("re-initialize: %v", err)
	}
	second := fixture.sdks.last()

	outcome, err := fixture.bridge.HandlePermissionResult(ctx, PermissionResult{
		Code:        DefaultPermissionRequestCode,
		Permissions: []string{permissionCamera},
		Granted:     []bool{true},
	})
	if err != nil {
		t.Fatalf("stale callback should not fail: %v", err)
	}
	if outcome != LaunchOutcomeStale {
		t.Fatalf("expected stale, got %s", outcome)
	}
	if first.starts() != 0 || second.starts() != 0 {
		t.Fatalf("expected no launch from a stale callback")
	}
	if len(fixture.emitter.snapshot()) != 0 {
		t.Fatalf("expected stale callback to be silent")
	}
}

func TestBridge_UnknownCodeCallbackIgnored(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, nil)
	ctx := context.Background()
	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := fixture.bridge.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	outcome, err := fixture.bridge.HandlePermissionResult(ctx, PermissionResult{Code: 42, Permissions: []string{permissionCamera}, Granted: []bool{true}})
	if err != nil || outcome != LaunchOutcomeStale {
		t.Fatalf("expected stale no-op, got %s %v", outcome, err)
	}
	if snapshot, _ := fixture.bridge.ActiveSession(ctx); !snapshot.AwaitingGrant {
		t.Fatalf("expected request %d to stay outstanding", DefaultPermissionRequestCode)
	}
}

func TestBridge_InitializeAppliesOptions(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	ctx := context.Background()

	handle, err := fixture.bridge.Initialize(ctx, validInitializeRequest(OptionsBag{
		"RequireVerification": true,
		"cameraPosition":      "front",
		"documentTypes":       []any{"passport", "bogus", "visa"},
		"requireFaceMatch":    "yes",
		"unknownKey":          1,
	}))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if handle.ID == "" {
		t.Fatalf("expected session id")
	}
	if len(handle.Issues) != 1 || handle.Issues[0].Key != "requireFaceMatch" {
		t.Fatalf("expected one requireFaceMatch issue, got %#v", handle.Issues)
	}

	cfg, ok := fixture.sdks.last().lastConfig()
	if !ok {
		t.Fatalf("expected sdk to be configured")
	}
	if cfg.RequireVerification == nil || !*cfg.RequireVerification {
		t.Fatalf("expected requireVerification applied")
	}
	if cfg.CameraPosition == nil || *cfg.CameraPosition != CameraPositionFront {
		t.Fatalf("expected front camera")
	}
	if !reflect.DeepEqual(cfg.DocumentTypes, []DocumentType{DocumentTypePassport, DocumentTypeVisa}) {
		t.Fatalf("unexpected document types %#v", cfg.DocumentTypes)
	}
	if cfg.RequireFaceMatch != nil {
		t.Fatalf("expected wrong-typed requireFaceMatch to stay unset")
	}
	if len(fixture.emitter.snapshot()) != 0 {
		t.Fatalf("type mismatches must not reach the host")
	}
}

func TestBridge_FailedInitializeKeepsPreviousSession(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	ctx := context.Background()

	handle, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	fixture.sdks.err = errors.New("device rooted")
	_, err = fixture.bridge.Initialize(ctx, validInitializeRequest(nil))
	if !HasTextCode(err, ErrorPlatformRejected) {
		t.Fatalf("expected platform rejected, got %v", err)
	}
	want := "Error initializing the Netverify SDK: device rooted"
	if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, []string{want}) {
		t.Fatalf("expected %q, got %#v", want, got)
	}
	snapshot, ok := fixture.bridge.ActiveSession(ctx)
	if !ok || snapshot.ID != handle.ID {
		t.Fatalf("expected previous session %s to stay active, got %#v", handle.ID, snapshot)
	}
}

func TestBridge_ConfigureFailureRejectsInitialize(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	fixture.bridge.sessions = NewSessionFactory(nil, SDKFactoryFunc(func(context.Context, Credentials) (SDK, error) {
		return &fakeSDK{configErr: errors.New("invalid country")}, nil
	}))

	_, err := fixture.bridge.Initialize(context.Background(), validInitializeRequest(OptionsBag{"preselectedCountry": "XX"}))
	if !HasTextCode(err, ErrorPlatformRejected) {
		t.Fatalf("expected platform rejected, got %v", err)
	}
	if _, ok := fixture.bridge.ActiveSession(context.Background()); ok {
		t.Fatalf("expected no active session")
	}
}

func TestBridge_SDKStartFailures(t *testing.T) {
	tests := []struct {
		name     string
		startErr error
		wantMsg  string
		wantCode string
	}{
		{
			name:     "generic failure is prefixed",
			startErr: errors.New("camera busy"),
			wantMsg:  "Error starting the Netverify SDK: camera busy",
			wantCode: ErrorSDKStartFailure,
		},
		{
			name:     "missing permission is reported verbatim",
			startErr: fmt.Errorf("Camera permission missing: %w", ErrSDKMissingPermission),
			wantMsg:  "Camera permission missing: " + ErrSDKMissingPermission.Error(),
			wantCode: ErrorPermissionDenied,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fixture := newBridgeFixture(t, nil, nil)
			ctx := context.Background()
			if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
				t.Fatalf("initialize: %v", err)
			}
			fixture.sdks.last().startErr = tc.startErr

			outcome, err := fixture.bridge.Start(ctx)
			if outcome != LaunchOutcomeFailed {
				t.Fatalf("expected failed, got %s", outcome)
			}
			if !HasTextCode(err, tc.wantCode) {
				t.Fatalf("expected %s, got %v", tc.wantCode, err)
			}
			if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, []string{tc.wantMsg}) {
				t.Fatalf("expected %q, got %#v", tc.wantMsg, got)
			}
		})
	}
}

func TestBridge_EnableDocumentReading(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, []string{permissionCamera})
	ctx := context.Background()

	if err := fixture.bridge.EnableDocumentReadingFeature(ctx); !HasTextCode(err, ErrorNotInitialized) {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, []string{MessageNotInitialized}) {
		t.Fatalf("expected not initialized event, got %#v", got)
	}

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(OptionsBag{"enableEpassport": false})); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sdk := fixture.sdks.last()
	if err := fixture.bridge.EnableDocumentReadingFeature(ctx); err != nil {
		t.Fatalf("enable document reading: %v", err)
	}

	snapshot, _ := fixture.bridge.ActiveSession(ctx)
	if snapshot.Config.EnableEpassport == nil || !*snapshot.Config.EnableEpassport {
		t.Fatalf("expected session config to record the flag")
	}
	if fixture.permissions.probes() != 0 || len(fixture.permissions.requestCalls()) != 0 {
		t.Fatalf("expected no permission side effects")
	}
	if sdk.starts() != 0 {
		t.Fatalf("expected no launch side effects")
	}
	if cfg, _ := sdk.lastConfig(); cfg.EnableEpassport == nil || *cfg.EnableEpassport {
		t.Fatalf("expected the sdk to be untouched until launch, got %#v", cfg.EnableEpassport)
	}

	if outcome, err := fixture.bridge.Start(ctx); err != nil || outcome != LaunchOutcomeLaunched {
		t.Fatalf("expected launch, got %s %v", outcome, err)
	}
	if cfg, _ := sdk.lastConfig(); cfg.EnableEpassport == nil || !*cfg.EnableEpassport {
		t.Fatalf("expected launch to hand the flag to the sdk")
	}
	if got := errorMessages(fixture.emitter.snapshot()); len(got) != 1 {
		t.Fatalf("expected no further events, got %#v", got)
	}
}

func TestBridge_DocumentReadingConfigureFailureReportsStartFailure(t *testing.T) {
	fixture := newBridgeFixture(t, []string{permissionCamera}, []string{permissionCamera})
	ctx := context.Background()

	if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sdk := fixture.sdks.last()
	sdk.mu.Lock()
	sdk.configErr = errors.New("nfc unavailable")
	sdk.mu.Unlock()

	if err := fixture.bridge.EnableDocumentReadingFeature(ctx); err != nil {
		t.Fatalf("expected the flag flip itself to succeed, got %v", err)
	}
	if got := errorMessages(fixture.emitter.snapshot()); len(got) != 0 {
		t.Fatalf("expected no events from the flag flip, got %#v", got)
	}

	_, err := fixture.bridge.Start(ctx)
	if !HasTextCode(err, ErrorSDKStartFailure) {
		t.Fatalf("expected sdk start failure, got %v", err)
	}
	want := []string{"Error starting the Netverify SDK: nfc unavailable"}
	if got := errorMessages(fixture.emitter.snapshot()); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %#v, got %#v", want, got)
	}
	if sdk.starts() != 0 {
		t.Fatalf("expected no launch after configure failure")
	}

	sdk.mu.Lock()
	sdk.configErr = nil
	sdk.mu.Unlock()
	if outcome, err := fixture.bridge.Start(ctx); err != nil || outcome != LaunchOutcomeLaunched {
		t.Fatalf("expected retry to launch, got %s %v", outcome, err)
	}
	if cfg, _ := sdk.lastConfig(); cfg.EnableEpassport == nil || !*cfg.EnableEpassport {
		t.Fatalf("expected retried launch to flush the flag")
	}
}

func TestBridge_ErrorEventsFilterBySession(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	ctx := context.Background()

	if _, err := fixture.bridge.Start(ctx); err == nil {
		t.Fatalf("expected start failure")
	}
	handle, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil))
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	fixture.sdks.last().startErr = errors.New("boom")
	if _, err := fixture.bridge.Start(ctx); err == nil {
		t.Fatalf("expected start failure")
	}

	all, err := fixture.bridge.ErrorEvents(ctx, ErrorEventFilter{})
	if err != nil {
		t.Fatalf("error events: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two journaled events, got %d", len(all))
	}
	scoped, err := fixture.bridge.ErrorEvents(ctx, ErrorEventFilter{SessionID: handle.ID})
	if err != nil {
		t.Fatalf("scoped error events: %v", err)
	}
	if len(scoped) != 1 || scoped[0].TextCode != ErrorSDKStartFailure {
		t.Fatalf("expected one sdk start failure for the session, got %#v", scoped)
	}
}

func TestBridge_ConcurrentInitializeLastWriterWins(t *testing.T) {
	fixture := newBridgeFixture(t, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := fixture.bridge.Initialize(ctx, validInitializeRequest(nil)); err != nil {
				t.Errorf("initialize: %v", err)
			}
		}()
	}
	wg.Wait()

	snapshot, ok := fixture.bridge.ActiveSession(ctx)
	if !ok || snapshot.ID == "" {
		t.Fatalf("expected an active session after concurrent initialize")
	}
	if fixture.sdks.calls() != 8 {
		t.Fatalf("expected eight sdk instances, got %d", fixture.sdks.calls())
	}
}
