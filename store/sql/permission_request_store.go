package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/goliatone/go-idcapture/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PermissionRequestStore persists the pending permission request so a
// callback delivered after a process restart can still be correlated.
type PermissionRequestStore struct {
	db   *bun.DB
	repo repository.Repository[*permissionRequestRecord]
	now  func() time.Time
}

func NewPermissionRequestStore(db *bun.DB) (*PermissionRequestStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*permissionRequestRecord](db, permissionRequestHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid permission request repository wiring: %w", err)
		}
	}
	return &PermissionRequestStore{
		db:   db,
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// Save replaces any request stored under the same code.
func (s *PermissionRequestStore) Save(ctx context.Context, req core.PermissionRequest) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: permission request store is not configured")
	}
	if req.Code <= 0 {
		return fmt.Errorf("sqlstore: permission request code must be positive")
	}
	now := s.now()
	issuedAt := req.IssuedAt.UTC()
	if req.IssuedAt.IsZero() {
		issuedAt = now
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findPermissionRequestTx(ctx, tx, req.Code)
		if err != nil {
			return err
		}
		created := false
		if record == nil {
			created = true
			record = &permissionRequestRecord{
				ID:          uuid.NewString(),
				RequestCode: req.Code,
				CreatedAt:   now,
			}
		}
		record.SessionID = req.SessionID
		record.Permissions = copyStrings(req.Permissions)
		record.IssuedAt = issuedAt
		record.UpdatedAt = now

		if created {
			_, insertErr := tx.NewInsert().Model(record).Exec(ctx)
			return insertErr
		}
		_, updateErr := tx.NewUpdate().
			Model(record).
			Where("id = ?", record.ID).
			Exec(ctx)
		return updateErr
	})
}

func (s *PermissionRequestStore) Get(ctx context.Context, code int) (core.PermissionRequest, error) {
	if s == nil || s.repo == nil {
		return core.PermissionRequest{}, fmt.Errorf("sqlstore: permission request store is not configured")
	}
	records, _, err := s.repo.List(ctx,
		repository.SelectBy("request_code", "=", strconv.Itoa(code)),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return core.PermissionRequest{}, err
	}
	if len(records) == 0 {
		return core.PermissionRequest{}, core.ErrPendingPermissionNotFound
	}
	return records[0].toDomain(), nil
}

// Take deletes the request by primary key inside a transaction. When a
// concurrent Take removed the row first, no row is affected and the request
// is reported as not found.
func (s *PermissionRequestStore) Take(ctx context.Context, code int) (core.PermissionRequest, error) {
	if s == nil || s.db == nil {
		return core.PermissionRequest{}, fmt.Errorf("sqlstore: permission request store is not configured")
	}
	var taken core.PermissionRequest
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findPermissionRequestTx(ctx, tx, code)
		if err != nil {
			return err
		}
		if record == nil {
			return core.ErrPendingPermissionNotFound
		}
		res, err := tx.NewDelete().
			Model((*permissionRequestRecord)(nil)).
			Where("id = ?", record.ID).
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return core.ErrPendingPermissionNotFound
		}
		taken = record.toDomain()
		return nil
	})
	if err != nil {
		return core.PermissionRequest{}, err
	}
	return taken, nil
}

func (s *PermissionRequestStore) Delete(ctx context.Context, code int) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: permission request store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*permissionRequestRecord)(nil)).
		Where("request_code = ?", code).
		Exec(ctx)
	return err
}

func (r *permissionRequestRecord) toDomain() core.PermissionRequest {
	if r == nil {
		return core.PermissionRequest{}
	}
	return core.PermissionRequest{
		SessionID:   r.SessionID,
		Code:        r.RequestCode,
		Permissions: copyStrings(r.Permissions),
		IssuedAt:    r.IssuedAt.UTC(),
	}
}

func findPermissionRequestTx(ctx context.Context, tx bun.Tx, code int) (*permissionRequestRecord, error) {
	record := &permissionRequestRecord{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.request_code = ?", code).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

func copyStrings(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
