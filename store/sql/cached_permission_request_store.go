package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-idcapture/core"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
)

const permissionRequestCacheKeyPrefix = "go-idcapture::permission_request::v1"

// CachedPermissionRequestStore reads pending requests through a cache and
// invalidates the entry on every write.
type CachedPermissionRequestStore struct {
	base  core.PendingPermissionStore
	cache repositorycache.CacheService
}

func NewCachedPermissionRequestStore(
	base core.PendingPermissionStore,
	cacheService repositorycache.CacheService,
) (*CachedPermissionRequestStore, error) {
	if base == nil {
		return nil, fmt.Errorf("sqlstore: base permission request store is required")
	}
	if cacheService == nil {
		return nil, fmt.Errorf("sqlstore: permission request cache service is required")
	}
	return &CachedPermissionRequestStore{base: base, cache: cacheService}, nil
}

// PermissionRequestCacheKey returns go-idcapture::permission_request::v1::<code>.
func PermissionRequestCacheKey(code int) string {
	return strings.Join([]string{permissionRequestCacheKeyPrefix, strconv.Itoa(code)}, "::")
}

func (s *CachedPermissionRequestStore) Get(ctx context.Context, code int) (core.PermissionRequest, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.PermissionRequest{}, fmt.Errorf("sqlstore: cached permission request store is not configured")
	}
	req, err := repositorycache.GetOrFetch(ctx, s.cache, PermissionRequestCacheKey(code), func(ctx context.Context) (core.PermissionRequest, error) {
		fetched, fetchErr := s.base.Get(ctx, code)
		if fetchErr != nil {
			return core.PermissionRequest{}, fetchErr
		}
		return clonePermissionRequest(fetched), nil
	})
	if err != nil {
		return core.PermissionRequest{}, err
	}
	return clonePermissionRequest(req), nil
}

func (s *CachedPermissionRequestStore) Save(ctx context.Context, req core.PermissionRequest) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached permission request store is not configured")
	}
	if err := s.base.Save(ctx, clonePermissionRequest(req)); err != nil {
		return err
	}
	return s.cache.Delete(ctx, PermissionRequestCacheKey(req.Code))
}

// Take always goes to the base store. Evicting the cached entry is best
// effort once the base store has consumed the request.
func (s *CachedPermissionRequestStore) Take(ctx context.Context, code int) (core.PermissionRequest, error) {
	if s == nil || s.base == nil || s.cache == nil {
		return core.PermissionRequest{}, fmt.Errorf("sqlstore: cached permission request store is not configured")
	}
	req, err := s.base.Take(ctx, code)
	_ = s.cache.Delete(ctx, PermissionRequestCacheKey(code))
	if err != nil {
		return core.PermissionRequest{}, err
	}
	return clonePermissionRequest(req), nil
}

func (s *CachedPermissionRequestStore) Delete(ctx context.Context, code int) error {
	if s == nil || s.base == nil || s.cache == nil {
		return fmt.Errorf("sqlstore: cached permission request store is not configured")
	}
	if err := s.base.Delete(ctx, code); err != nil {
		return err
	}
	return s.cache.Delete(ctx, PermissionRequestCacheKey(code))
}

func clonePermissionRequest(req core.PermissionRequest) core.PermissionRequest {
	cloned := req
	cloned.Permissions = copyStrings(req.Permissions)
	return cloned
}
