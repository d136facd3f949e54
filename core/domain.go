package core

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrPendingPermissionNotFound = errors.New("core: pending permission request not found")
	ErrSDKMissingPermission      = errors.New("core: sdk reported missing permission")
)

type DataCenter string

const (
	DataCenterUS DataCenter = "US"
	DataCenterEU DataCenter = "EU"
)

// ParseDataCenter resolves "eu" (any case) to EU and every other value,
// including padded spellings such as " eu", to US.
func ParseDataCenter(value string) DataCenter {
	if strings.EqualFold(value, "eu") {
		return DataCenterEU
	}
	return DataCenterUS
}

type CameraPosition string

const (
	CameraPositionFront CameraPosition = "FRONT"
	CameraPositionBack  CameraPosition = "BACK"
)

func ParseCameraPosition(value string) CameraPosition {
	if strings.ToLower(value) == "front" {
		return CameraPositionFront
	}
	return CameraPositionBack
}

type DocumentVariant string

const (
	DocumentVariantPaper   DocumentVariant = "PAPER"
	DocumentVariantPlastic DocumentVariant = "PLASTIC"
)

func ParseDocumentVariant(value string) DocumentVariant {
	if strings.ToLower(value) == "paper" {
		return DocumentVariantPaper
	}
	return DocumentVariantPlastic
}

type DocumentType string

const (
	DocumentTypePassport      DocumentType = "PASSPORT"
	DocumentTypeDriverLicense DocumentType = "DRIVER_LICENSE"
	DocumentTypeIdentityCard  DocumentType = "IDENTITY_CARD"
	DocumentTypeVisa          DocumentType = "VISA"
)

var documentTypeVocabulary = map[string]DocumentType{
	"passport":       DocumentTypePassport,
	"driver_license": DocumentTypeDriverLicense,
	"identity_card":  DocumentTypeIdentityCard,
	"visa":           DocumentTypeVisa,
}

// ParseDocumentTypes keeps recognized entries in input order and drops the rest.
func ParseDocumentTypes(values []string) []DocumentType {
	out := make([]DocumentType, 0, len(values))
	for _, value := range values {
		if documentType, ok := documentTypeVocabulary[strings.ToLower(value)]; ok {
			out = append(out, documentType)
		}
	}
	return out
}

type CredentialsInput struct {
	APIToken   string
	APISecret  string
	DataCenter string
}

type Credentials struct {
	APIToken   string
	APISecret  string
	DataCenter DataCenter
}

// OptionsBag is the untyped host configuration; values are bool, string,
// []string or []any.
type OptionsBag map[string]any

type InitializeRequest struct {
	Credentials CredentialsInput
	Options     OptionsBag
}

// SessionConfig holds one field per recognized option. A nil field keeps the
// SDK default.
type SessionConfig struct {
	RequireVerification        *bool
	CallbackURL                *string
	RequireFaceMatch           *bool
	PreselectedCountry         *string
	MerchantScanReference      *string
	MerchantReportingCriteria  *string
	CustomerID                 *string
	AdditionalInformation      *string
	EnableEpassport            *bool
	SendDebugInfo              *bool
	DataExtractionOnMobileOnly *bool
	CameraPosition             *CameraPosition
	DocumentVariant            *DocumentVariant
	DocumentTypes              []DocumentType
}

func (c SessionConfig) Clone() SessionConfig {
	out := SessionConfig{
		RequireVerification:        cloneBool(c.RequireVerification),
		CallbackURL:                cloneString(c.CallbackURL),
		RequireFaceMatch:           cloneBool(c.RequireFaceMatch),
		PreselectedCountry:         cloneString(c.PreselectedCountry),
		MerchantScanReference:      cloneString(c.MerchantScanReference),
		MerchantReportingCriteria:  cloneString(c.MerchantReportingCriteria),
		CustomerID:                 cloneString(c.CustomerID),
		AdditionalInformation:      cloneString(c.AdditionalInformation),
		EnableEpassport:            cloneBool(c.EnableEpassport),
		SendDebugInfo:              cloneBool(c.SendDebugInfo),
		DataExtractionOnMobileOnly: cloneBool(c.DataExtractionOnMobileOnly),
	}
	if c.CameraPosition != nil {
		value := *c.CameraPosition
		out.CameraPosition = &value
	}
	if c.DocumentVariant != nil {
		value := *c.DocumentVariant
		out.DocumentVariant = &value
	}
	if c.DocumentTypes != nil {
		out.DocumentTypes = append([]DocumentType{}, c.DocumentTypes...)
	}
	return out
}

// Session is the live handle to one SDK instance.
type Session struct {
	ID          string
	Credentials Credentials
	Config      SessionConfig
	CreatedAt   time.Time

	sdk         SDK
	configDirty bool
}

func (s *Session) SDK() SDK {
	if s == nil {
		return nil
	}
	return s.sdk
}

func (s *Session) snapshot() SessionSnapshot {
	return SessionSnapshot{
		ID:         s.ID,
		DataCenter: s.Credentials.DataCenter,
		Config:     s.Config.Clone(),
		CreatedAt:  s.CreatedAt,
	}
}

// SessionHandle identifies the session produced by Initialize.
type SessionHandle struct {
	ID        string
	CreatedAt time.Time
	Issues    []ConfigIssue
}

// SessionSnapshot is a read-only copy of the active session without secrets.
type SessionSnapshot struct {
	ID                 string
	DataCenter         DataCenter
	Config             SessionConfig
	CreatedAt          time.Time
	AwaitingGrant      bool
	PendingPermissions []string
}

type PermissionRequest struct {
	SessionID   string
	Code        int
	Permissions []string
	IssuedAt    time.Time
}

// PermissionResult mirrors the OS callback: parallel permission and grant
// slices tagged with the request code.
type PermissionResult struct {
	Code        int
	Permissions []string
	Granted     []bool
}

func (r PermissionResult) grantedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Permissions))
	for i, permission := range r.Permissions {
		if i < len(r.Granted) && r.Granted[i] {
			set[permission] = struct{}{}
		}
	}
	return set
}

type LaunchOutcome string

const (
	LaunchOutcomeNone          LaunchOutcome = ""
	LaunchOutcomeLaunched      LaunchOutcome = "launched"
	LaunchOutcomeAwaitingGrant LaunchOutcome = "awaiting_grant"
	LaunchOutcomeDenied        LaunchOutcome = "denied"
	LaunchOutcomeStale         LaunchOutcome = "stale"
	LaunchOutcomeFailed        LaunchOutcome = "failed"
)

const EventError = "EventError"

const ErrorMessageField = "errorMessage"

type ErrorEvent struct {
	ID           string
	Name         string
	ErrorMessage string
	TextCode     string
	SessionID    string
	OccurredAt   time.Time
}

func (e ErrorEvent) Payload() map[string]any {
	return map[string]any{ErrorMessageField: e.ErrorMessage}
}

type ErrorEventFilter struct {
	SessionID string
	Limit     int
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	out := *value
	return &out
}

func copyStrings(values []string) []string {
	if len(values) == 0 {
		return []string{}
	}
	return append([]string(nil), values...)
}
