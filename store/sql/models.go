package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

type permissionRequestRecord struct {
	bun.BaseModel `bun:"table:idcapture_permission_requests,alias:ipr"`

	ID          string    `bun:"id,pk"`
	RequestCode int       `bun:"request_code,notnull"`
	SessionID   string    `bun:"session_id,notnull"`
	Permissions []string  `bun:"permissions,type:jsonb,notnull"`
	IssuedAt    time.Time `bun:"issued_at,notnull"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type errorEventRecord struct {
	bun.BaseModel `bun:"table:idcapture_error_events,alias:iee"`

	ID           string    `bun:"id,pk"`
	Name         string    `bun:"name,notnull"`
	ErrorMessage string    `bun:"error_message,notnull"`
	TextCode     string    `bun:"text_code,notnull"`
	SessionID    string    `bun:"session_id,notnull"`
	OccurredAt   time.Time `bun:"occurred_at,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
