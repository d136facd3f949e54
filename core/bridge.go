package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
)


// Bridge owns the single active capture session and sequences
// initialize, permission acquisition and launch. Failures are reported to the
// host as EventError and also returned to Go callers.
type Bridge struct {
	config          Config
	logger          Logger
	loggerProvider  LoggerProvider
	metricsRecorder MetricsRecorder
	errorMapper     ErrorMapper
	configProvider  ConfigProvider
	optionsResolver OptionsResolver
	journal         EventJournal
	sessions        *SessionFactory
	permissions     *PermissionCoordinator
	reporter        *EventReporter

	mu     sync.Mutex
	active *Session
}

type BridgeDependencies struct {
	Logger          Logger
	LoggerProvider  LoggerProvider
	MetricsRecorder MetricsRecorder
	ErrorMapper     ErrorMapper
	ConfigProvider  ConfigProvider
	OptionsResolver OptionsResolver
	EventJournal    EventJournal
}

func NewBridge(cfg Config, opts ...Option) (*Bridge, error) {
	builder := defaultBridgeBuilder(cfg)
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&builder)
	}

	provider, logger := glog.Resolve("idcapture", builder.loggerProvider, builder.logger)
	logger = glog.Ensure(logger)
	if provider != nil {
		if named := provider.GetLogger("idcapture"); named != nil {
			logger = glog.Ensure(named)
		}
	}

	if builder.metricsRecorder == nil {
		builder.metricsRecorder = NopMetricsRecorder{}
	}
	if builder.errorMapper == nil {
		builder.errorMapper = defaultErrorMapper
	}
	if builder.configProvider == nil {
		builder.configProvider = NewCfgxConfigProvider(nil)
	}
	if builder.optionsResolver == nil {
		builder.optionsResolver = GoOptionsResolver{}
	}
	if builder.pendingStore == nil {
		builder.pendingStore = NewMemoryPendingPermissionStore()
	}
	if builder.sdkFactory == nil {
		return nil, mapBuildError(builder.errorMapper, dependencyError("core: sdk factory is required"))
	}

	defaults := DefaultConfig()
	loaded, err := builder.configProvider.Load(context.Background(), defaults)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}
	finalConfig, err := builder.optionsResolver.Resolve(defaults, loaded, builder.runtimeConfig)
	if err != nil {
		return nil, mapBuildError(builder.errorMapper, err)
	}

	journal := builder.journal
	if finalConfig.Journal.Disabled {
		journal = nil
	}

	return &Bridge{
		config:          finalConfig,
		logger:          logger,
		loggerProvider:  provider,
		metricsRecorder: builder.metricsRecorder,
		errorMapper:     builder.errorMapper,
		configProvider:  builder.configProvider,
		optionsResolver: builder.optionsResolver,
		journal:         journal,
		sessions:        NewSessionFactory(builder.platformProbe, builder.sdkFactory),
		permissions: NewPermissionCoordinator(
			builder.permissionProbe,
			builder.permissionRequester,
			builder.pendingStore,
			finalConfig.PermissionRequestCode,
		),
		reporter: NewEventReporter(builder.eventEmitter, journal, logger),
	}, nil
}

func mapBuildError(mapper ErrorMapper, err error) error {
	if err == nil {
		return nil
	}
	if mapper == nil {
		return err
	}
	mapped := mapper(err)
	if mapped == nil {
		return err
	}
	return mapped
}

func (b *Bridge) Config() Config {
	if b == nil {
		return Config{}
	}
	return b.config
}

func (b *Bridge) Dependencies() BridgeDependencies {
	if b == nil {
		return BridgeDependencies{}
	}
	return BridgeDependencies{
		Logger:          b.logger,
		LoggerProvider:  b.loggerProvider,
		MetricsRecorder: b.metricsRecorder,
		ErrorMapper:     b.errorMapper,
		ConfigProvider:  b.configProvider,
		OptionsResolver: b.optionsResolver,
		EventJournal:    b.journal,
	}
}

// Initialize creates a session, applies the options and makes it the active
// session. On failure the previously active session, if any, stays active.
func (b *Bridge) Initialize(ctx context.Context, req InitializeRequest) (handle SessionHandle, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"data_center":  string(ParseDataCenter(req.Credentials.DataCenter)),
		"option_count": len(req.Options),
	}
	defer func() {
		b.observeOperation(ctx, startedAt, "initialize", err, fields)
	}()
	if b == nil {
		return SessionHandle{}, dependencyError("core: bridge is nil")
	}

	session, err := b.sessions.Create(ctx, req.Credentials)
	if err != nil {
		b.reporter.reportErr(ctx, err, "")
		return SessionHandle{}, err
	}

	issues := ApplyOptions(&session.Config, req.Options)
	for _, issue := range issues {
		b.logWarn(ctx, "option ignored", map[string]any{
			"session_id": session.ID,
			"option":     issue.Key,
			"error":      configTypeMismatchError(issue).Error(),
			"text_code":  ErrorConfigTypeMismatch,
		})
	}
	if unknown := UnknownOptionKeys(req.Options); len(unknown) > 0 {
		b.logDebug(ctx, "unrecognized options ignored", map[string]any{
			"session_id": session.ID,
			"options":    unknown,
		})
	}

	if configureErr := session.sdk.Configure(ctx, session.Config.Clone()); configureErr != nil {
		err = platformRejectedError(configureErr)
		b.reporter.reportErr(ctx, err, session.ID)
		return SessionHandle{}, err
	}

	if previous := b.replaceActive(session); previous != nil {
		fields["replaced_session_id"] = previous.ID
	}
	fields["session_id"] = session.ID
	fields["issue_count"] = len(issues)

	return SessionHandle{
		ID:        session.ID,
		CreatedAt: session.CreatedAt,
		Issues:    issues,
	}, nil
}

// Start launches the active session, or issues a permission request and
// returns LaunchOutcomeAwaitingGrant without launching.
func (b *Bridge) Start(ctx context.Context) (outcome LaunchOutcome, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["outcome"] = string(outcome)
		b.observeOperation(ctx, startedAt, "start", err, fields)
	}()
	if b == nil {
		return LaunchOutcomeFailed, dependencyError("core: bridge is nil")
	}

	session := b.currentSession()
	if session == nil {
		err = notInitializedError()
		b.reporter.reportErr(ctx, err, "")
		return LaunchOutcomeFailed, err
	}
	fields["session_id"] = session.ID

	outcome, err = b.permissions.EnsureStarted(ctx, session, b.launch)
	if err != nil {
		err = startFailure(err)
		b.reporter.reportErr(ctx, err, session.ID)
		return LaunchOutcomeFailed, err
	}
	return outcome, nil
}

// HandlePermissionResult resumes a start suspended on a permission request.
func (b *Bridge) HandlePermissionResult(ctx context.Context, result PermissionResult) (outcome LaunchOutcome, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"request_code": result.Code}
	defer func() {
		fields["outcome"] = string(outcome)
		b.observeOperation(ctx, startedAt, "permission_result", err, fields)
	}()
	if b == nil {
		return LaunchOutcomeFailed, dependencyError("core: bridge is nil")
	}

	session := b.currentSession()
	sessionID := ""
	if session != nil {
		sessionID = session.ID
		fields["session_id"] = sessionID
	}

	outcome, err = b.permissions.Resume(ctx, session, result, b.launch)
	if outcome == LaunchOutcomeStale {
		b.logInfo(ctx, "stale permission callback ignored", map[string]any{
			"request_code": result.Code,
			"session_id":   sessionID,
		})
		return outcome, nil
	}
	if err != nil {
		err = startFailure(err)
		b.reporter.reportErr(ctx, err, sessionID)
		if outcome != LaunchOutcomeDenied {
			outcome = LaunchOutcomeFailed
		}
		return outcome, err
	}
	return outcome, nil
}

// EnableDocumentReadingFeature turns on electronic document reading for the
// active session. It only flips the flag: the SDK receives the updated
// configuration on the next launch.
func (b *Bridge) EnableDocumentReadingFeature(ctx context.Context) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		b.observeOperation(ctx, startedAt, "enable_document_reading", err, fields)
	}()
	if b == nil {
		return dependencyError("core: bridge is nil")
	}

	b.mu.Lock()
	session := b.active
	if session != nil {
		enabled := true
		session.Config.EnableEpassport = &enabled
		session.configDirty = true
	}
	b.mu.Unlock()

	if session == nil {
		err = notInitializedError()
		b.reporter.reportErr(ctx, err, "")
		return err
	}
	fields["session_id"] = session.ID
	return nil
}

// ActiveSession returns a copy of the active session, including any
// outstanding permission request it is waiting on.
func (b *Bridge) ActiveSession(ctx context.Context) (SessionSnapshot, bool) {
	if b == nil {
		return SessionSnapshot{}, false
	}
	b.mu.Lock()
	if b.active == nil {
		b.mu.Unlock()
		return SessionSnapshot{}, false
	}
	snapshot := b.active.snapshot()
	b.mu.Unlock()

	if pending, ok := b.permissions.Pending(ctx); ok && pending.SessionID == snapshot.ID {
		snapshot.AwaitingGrant = true
		snapshot.PendingPermissions = copyStrings(pending.Permissions)
	}
	return snapshot, true
}

// ErrorEvents lists journaled error events, newest first.
func (b *Bridge) ErrorEvents(ctx context.Context, filter ErrorEventFilter) ([]ErrorEvent, error) {
	if b == nil || b.journal == nil {
		return []ErrorEvent{}, nil
	}
	return b.journal.List(ctx, filter)
}

func (b *Bridge) currentSession() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Bridge) replaceActive(session *Session) *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	previous := b.active
	b.active = session
	return previous
}

func (b *Bridge) launch(ctx context.Context, session *Session) error {
	sdk := session.SDK()
	if sdk == nil {
		return dependencyError("core: session %s has no sdk instance", session.ID)
	}
	if err := b.flushConfig(ctx, session, sdk); err != nil {
		return sdkStartError(err)
	}
	if err := sdk.Start(ctx); err != nil {
		if errors.Is(err, ErrSDKMissingPermission) {
			return sdkMissingPermissionError(err)
		}
		return sdkStartError(err)
	}
	return nil
}

// flushConfig hands configuration changed after Initialize to the SDK. The
// session stays dirty when Configure fails so the next launch retries it.
func (b *Bridge) flushConfig(ctx context.Context, session *Session, sdk SDK) error {
	b.mu.Lock()
	dirty := session.configDirty
	cfg := session.Config.Clone()
	b.mu.Unlock()
	if !dirty {
		return nil
	}
	if err := sdk.Configure(ctx, cfg); err != nil {
		return err
	}
	b.mu.Lock()
	session.configDirty = false
	b.mu.Unlock()
	return nil
}

// startFailure keeps already classified launch errors and wraps everything
// else as an SDK start failure.
func startFailure(err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil {
		switch strings.TrimSpace(richErr.TextCode) {
		case ErrorPermissionDenied, ErrorSDKStartFailure, ErrorNotInitialized:
			return richErr
		}
	}
	return sdkStartError(err)
}
