package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionFactory validates credentials and creates SDK-backed sessions.
type SessionFactory struct {
	platform PlatformProbe
	sdks     SDKFactory
	now      func() time.Time
	newID    func() string
}

func NewSessionFactory(platform PlatformProbe, sdks SDKFactory) *SessionFactory {
	return &SessionFactory{
		platform: platform,
		sdks:     sdks,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Create checks platform support, then the credentials, then asks the SDK.
func (f *SessionFactory) Create(ctx context.Context, input CredentialsInput) (*Session, error) {
	if f == nil || f.sdks == nil {
		return nil, dependencyError("core: sdk factory is required")
	}
	if f.platform != nil && !f.platform.Supported(ctx) {
		return nil, unsupportedPlatformError()
	}
	if input.APIToken == "" || input.APISecret == "" || input.DataCenter == "" {
		return nil, missingCredentialsError()
	}

	credentials := Credentials{
		APIToken:   input.APIToken,
		APISecret:  input.APISecret,
		DataCenter: ParseDataCenter(input.DataCenter),
	}
	sdk, err := f.sdks.Create(ctx, credentials)
	if err != nil {
		return nil, platformRejectedError(err)
	}
	if sdk == nil {
		return nil, platformRejectedError(dependencyError("core: sdk factory returned no instance"))
	}
	return &Session{
		ID:          strings.TrimSpace(f.newID()),
		Credentials: credentials,
		Config:      SessionConfig{},
		CreatedAt:   f.now(),
		sdk:         sdk,
	}, nil
}
