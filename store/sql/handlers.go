package sqlstore

import (
	"strconv"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

func permissionRequestHandlers() repository.ModelHandlers[*permissionRequestRecord] {
	return repository.ModelHandlers[*permissionRequestRecord]{
		NewRecord: func() *permissionRequestRecord {
			return &permissionRequestRecord{}
		},
		GetID: func(record *permissionRequestRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *permissionRequestRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "request_code"
		},
		GetIdentifierValue: func(record *permissionRequestRecord) string {
			if record == nil {
				return ""
			}
			return strconv.Itoa(record.RequestCode)
		},
	}
}

func errorEventHandlers() repository.ModelHandlers[*errorEventRecord] {
	return repository.ModelHandlers[*errorEventRecord]{
		NewRecord: func() *errorEventRecord {
			return &errorEventRecord{}
		},
		GetID: func(record *errorEventRecord) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return parseUUID(record.ID)
		},
		SetID: func(record *errorEventRecord, id uuid.UUID) {
			if record == nil {
				return
			}
			record.ID = id.String()
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(record *errorEventRecord) string {
			if record == nil {
				return ""
			}
			return strings.TrimSpace(record.ID)
		},
	}
}

func parseUUID(value string) uuid.UUID {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil
	}
	return parsed
}
