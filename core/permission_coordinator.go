package core

import (
	"context"
	"errors"
	"strings"
	"time"
)

// LaunchFunc starts the SDK capture flow for a session.
type LaunchFunc func(ctx context.Context, session *Session) error

// PermissionCoordinator gates launch on OS runtime permissions. When a
// permission is missing it stores a pending token and issues one request;
// the launch resumes from Resume once the matching callback arrives.
type PermissionCoordinator struct {
	probe     PermissionProbe
	requester PermissionRequester
	store     PendingPermissionStore
	code      int
	now       func() time.Time
}

func NewPermissionCoordinator(
	probe PermissionProbe,
	requester PermissionRequester,
	store PendingPermissionStore,
	code int,
) *PermissionCoordinator {
	if store == nil {
		store = NewMemoryPendingPermissionStore()
	}
	if code <= 0 {
		code = DefaultPermissionRequestCode
	}
	return &PermissionCoordinator{
		probe:     probe,
		requester: requester,
		store:     store,
		code:      code,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (c *PermissionCoordinator) Code() int {
	if c == nil {
		return 0
	}
	return c.code
}

// MissingPermissions returns the session's required permissions that the
// probe does not report as granted, deduplicated in SDK order.
func (c *PermissionCoordinator) MissingPermissions(ctx context.Context, session *Session) []string {
	if session == nil || session.sdk == nil {
		return []string{}
	}
	required := normalizePermissions(session.sdk.RequiredPermissions())
	if c == nil || c.probe == nil {
		return []string{}
	}
	missing := make([]string, 0, len(required))
	for _, permission := range required {
		if !c.probe.Granted(ctx, permission) {
			missing = append(missing, permission)
		}
	}
	return missing
}

// EnsureStarted launches synchronously when every permission is granted,
// otherwise records a pending request and returns LaunchOutcomeAwaitingGrant
// without launching.
func (c *PermissionCoordinator) EnsureStarted(ctx context.Context, session *Session, launch LaunchFunc) (LaunchOutcome, error) {
	if c == nil {
		return LaunchOutcomeFailed, dependencyError("core: permission coordinator is required")
	}
	if session == nil {
		return LaunchOutcomeFailed, notInitializedError()
	}
	missing := c.MissingPermissions(ctx, session)
	if len(missing) == 0 {
		if err := launch(ctx, session); err != nil {
			return LaunchOutcomeFailed, err
		}
		return LaunchOutcomeLaunched, nil
	}

	if c.requester == nil {
		return LaunchOutcomeFailed, dependencyError("core: permission requester is required to acquire %s", strings.Join(missing, ", "))
	}
	request := PermissionRequest{
		SessionID:   session.ID,
		Code:        c.code,
		Permissions: missing,
		IssuedAt:    c.now(),
	}
	if err := c.store.Save(ctx, request); err != nil {
		return LaunchOutcomeFailed, err
	}
	if err := c.requester.RequestPermissions(ctx, copyStrings(missing), c.code); err != nil {
		_ = c.store.Delete(ctx, c.code)
		return LaunchOutcomeFailed, err
	}
	return LaunchOutcomeAwaitingGrant, nil
}

// Resume consumes a permission callback. Callbacks with an unknown code, or
// whose request belongs to a session other than active, are stale and do
// nothing.
func (c *PermissionCoordinator) Resume(
	ctx context.Context,
	active *Session,
	result PermissionResult,
	launch LaunchFunc,
) (LaunchOutcome, error) {
	if c == nil {
		return LaunchOutcomeFailed, dependencyError("core: permission coordinator is required")
	}
	if result.Code != c.code {
		return LaunchOutcomeStale, nil
	}
	pending, err := c.store.Take(ctx, result.Code)
	if err != nil {
		if errors.Is(err, ErrPendingPermissionNotFound) {
			return LaunchOutcomeStale, nil
		}
		return LaunchOutcomeFailed, err
	}
	if active == nil || active.ID != pending.SessionID {
		return LaunchOutcomeStale, nil
	}

	if denied := deniedPermissions(pending.Permissions, result); len(denied) > 0 {
		return LaunchOutcomeDenied, permissionDeniedError(denied)
	}
	if err := launch(ctx, active); err != nil {
		return LaunchOutcomeFailed, err
	}
	return LaunchOutcomeLaunched, nil
}

// Pending returns the outstanding request for the coordinator's code.
func (c *PermissionCoordinator) Pending(ctx context.Context) (PermissionRequest, bool) {
	if c == nil {
		return PermissionRequest{}, false
	}
	pending, err := c.store.Get(ctx, c.code)
	if err != nil {
		return PermissionRequest{}, false
	}
	return pending, true
}

// deniedPermissions lists requested permissions the callback did not grant.
// An empty callback (the user dismissed the prompt) denies everything.
func deniedPermissions(requested []string, result PermissionResult) []string {
	granted := result.grantedSet()
	denied := make([]string, 0)
	for _, permission := range requested {
		if _, ok := granted[permission]; !ok {
			denied = append(denied, permission)
		}
	}
	return denied
}

func normalizePermissions(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
