package sqlstore

import (
	"fmt"

	"github.com/goliatone/go-idcapture/core"
	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds the durable bridge stores over one bun database.
type RepositoryFactory struct {
	db *bun.DB

	permissionRequestStore *PermissionRequestStore
	eventJournal           *EventJournal
	cacheService           repositorycache.CacheService
}

type FactoryOption func(*RepositoryFactory)

// WithCacheService fronts the pending permission store with a read-through
// cache.
func WithCacheService(service repositorycache.CacheService) FactoryOption {
	return func(f *RepositoryFactory) {
		f.cacheService = service
	}
}

func NewRepositoryFactory(opts ...FactoryOption) *RepositoryFactory {
	factory := &RepositoryFactory{}
	for _, opt := range opts {
		if opt != nil {
			opt(factory)
		}
	}
	return factory
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB, opts ...FactoryOption) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory(opts...)
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.permissionRequestStore != nil && f.eventJournal != nil {
		return nil
	}
	permissionRequestStore, err := NewPermissionRequestStore(f.db)
	if err != nil {
		return err
	}
	eventJournal, err := NewEventJournal(f.db)
	if err != nil {
		return err
	}
	f.permissionRequestStore = permissionRequestStore
	f.eventJournal = eventJournal
	return nil
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

// PendingPermissionStore returns the cached store when a cache service was
// configured and the plain SQL store otherwise.
func (f *RepositoryFactory) PendingPermissionStore() (core.PendingPermissionStore, error) {
	if f == nil || f.permissionRequestStore == nil {
		return nil, fmt.Errorf("sqlstore: stores are not built")
	}
	if f.cacheService == nil {
		return f.permissionRequestStore, nil
	}
	return NewCachedPermissionRequestStore(f.permissionRequestStore, f.cacheService)
}

func (f *RepositoryFactory) EventJournal() *EventJournal {
	if f == nil {
		return nil
	}
	return f.eventJournal
}

// BridgeOptions returns the bridge options wiring both durable stores.
func (f *RepositoryFactory) BridgeOptions() ([]core.Option, error) {
	pending, err := f.PendingPermissionStore()
	if err != nil {
		return nil, err
	}
	return []core.Option{
		core.WithPendingPermissionStore(pending),
		core.WithEventJournal(f.EventJournal()),
	}, nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		if typed == nil {
			return nil, fmt.Errorf("sqlstore: bun db is required")
		}
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
