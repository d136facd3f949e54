package command

import (
	"github.com/goliatone/go-idcapture/core"
)

const (
	TypeInitialize            = "idcapture.command.initialize"
	TypeStart                 = "idcapture.command.start"
	TypeEnableDocumentReading = "idcapture.command.document_reading.enable"
	TypePermissionResult      = "idcapture.command.permission_result"
)

// InitializeMessage carries the host initialize call. Credentials are not
// validated here: the bridge reports missing credentials to the host itself.
type InitializeMessage struct {
	APIToken   string
	APISecret  string
	DataCenter string
	Options    core.OptionsBag
}

func (InitializeMessage) Type() string { return TypeInitialize }

func (InitializeMessage) Validate() error { return nil }

func (m InitializeMessage) Request() core.InitializeRequest {
	return core.InitializeRequest{
		Credentials: core.CredentialsInput{
			APIToken:   m.APIToken,
			APISecret:  m.APISecret,
			DataCenter: m.DataCenter,
		},
		Options: m.Options,
	}
}

type StartMessage struct{}

func (StartMessage) Type() string { return TypeStart }

type EnableDocumentReadingMessage struct{}

func (EnableDocumentReadingMessage) Type() string { return TypeEnableDocumentReading }

// PermissionResultMessage mirrors the OS permission callback.
type PermissionResultMessage struct {
	RequestCode int
	Permissions []string
	Granted     []bool
}

func (PermissionResultMessage) Type() string { return TypePermissionResult }

func (m PermissionResultMessage) Validate() error {
	if m.RequestCode <= 0 {
		return commandValidationError("request_code", "request code must be positive")
	}
	if len(m.Permissions) != len(m.Granted) {
		return commandValidationError("granted", "permissions and grant results must have the same length")
	}
	return nil
}

func (m PermissionResultMessage) Result() core.PermissionResult {
	return core.PermissionResult{
		Code:        m.RequestCode,
		Permissions: append([]string(nil), m.Permissions...),
		Granted:     append([]bool(nil), m.Granted...),
	}
}
