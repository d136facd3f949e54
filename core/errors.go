package core

import (
	"fmt"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	ErrorUnsupportedPlatform = "IDCAPTURE_UNSUPPORTED_PLATFORM"
	ErrorMissingCredentials  = "IDCAPTURE_MISSING_CREDENTIALS"
	ErrorPlatformRejected    = "IDCAPTURE_PLATFORM_REJECTED"
	ErrorNotInitialized      = "IDCAPTURE_NOT_INITIALIZED"
	ErrorConfigTypeMismatch  = "IDCAPTURE_CONFIG_TYPE_MISMATCH"
	ErrorInvalidInput        = "IDCAPTURE_INVALID_INPUT"
	ErrorPermissionDenied    = "IDCAPTURE_PERMISSION_DENIED"
	ErrorSDKStartFailure     = "IDCAPTURE_SDK_START_FAILURE"
	ErrorInternal            = "IDCAPTURE_INTERNAL_ERROR"
)

// Host-visible messages. Host code matches on these strings.
const (
	MessageUnsupportedPlatform = "This platform is not supported."
	MessageMissingCredentials  = "Missing required parameters apiToken, apiSecret or dataCenter."
	MessageNotInitialized      = "The Netverify SDK is not initialized yet. Call initNetverify() first."
	messagePlatformRejected    = "Error initializing the Netverify SDK: "
	messageStartFailure        = "Error starting the Netverify SDK: "
	messagePermissionDenied    = "Required permissions were not granted: "
)

func bridgeError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return goerrors.New(message, category).
		WithTextCode(textCode)
}

func bridgeWrapError(source error, category goerrors.Category, message string, textCode string) *goerrors.Error {
	if source == nil {
		return bridgeError(message, category, textCode)
	}
	var richErr *goerrors.Error
	if !goerrors.As(source, &richErr) {
		return goerrors.Wrap(source, category, message).
			WithTextCode(textCode)
	}
	// Wrap would clone the source and prefix its message; the host message
	// already carries the detail.
	wrapped := bridgeError(message, category, textCode)
	wrapped.Source = source
	return wrapped
}

func unsupportedPlatformError() *goerrors.Error {
	return bridgeError(MessageUnsupportedPlatform, goerrors.CategoryOperation, ErrorUnsupportedPlatform)
}

func missingCredentialsError() *goerrors.Error {
	return bridgeError(MessageMissingCredentials, goerrors.CategoryBadInput, ErrorMissingCredentials)
}

func platformRejectedError(source error) *goerrors.Error {
	return bridgeWrapError(source, goerrors.CategoryExternal, messagePlatformRejected+errorDetail(source), ErrorPlatformRejected)
}

func notInitializedError() *goerrors.Error {
	return bridgeError(MessageNotInitialized, goerrors.CategoryOperation, ErrorNotInitialized)
}

func permissionDeniedError(denied []string) *goerrors.Error {
	return bridgeError(messagePermissionDenied+strings.Join(denied, ", "), goerrors.CategoryAuthz, ErrorPermissionDenied).
		WithMetadata(map[string]any{"denied_permissions": copyStrings(denied)})
}

func sdkStartError(source error) *goerrors.Error {
	return bridgeWrapError(source, goerrors.CategoryExternal, messageStartFailure+errorDetail(source), ErrorSDKStartFailure)
}

// sdkMissingPermissionError keeps the SDK's own text as the host message.
func sdkMissingPermissionError(source error) *goerrors.Error {
	return bridgeWrapError(source, goerrors.CategoryAuthz, errorDetail(source), ErrorPermissionDenied)
}

func configTypeMismatchError(issue ConfigIssue) *goerrors.Error {
	return bridgeError(issue.String(), goerrors.CategoryValidation, ErrorConfigTypeMismatch).
		WithMetadata(map[string]any{"option": issue.Key, "expected": issue.Expected})
}

func errorDetail(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr != nil && richErr.Message != "" {
		return richErr.Message
	}
	return err.Error()
}

// HostMessage returns the text that crosses the host boundary for err.
func HostMessage(err error) string {
	return errorDetail(err)
}

// HasTextCode reports whether err carries the given bridge text code.
func HasTextCode(err error, textCode string) bool {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) || richErr == nil {
		return false
	}
	return richErr.TextCode == textCode
}

func bridgeErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureBridgeErrorEnvelope(richErr)
	}
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	if mapped == nil {
		return nil
	}
	mapped.TextCode = defaultBridgeTextCode(mapped.Category)
	return ensureBridgeErrorEnvelope(mapped)
}

func ensureBridgeErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultBridgeTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultBridgeTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return ErrorInvalidInput
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return ErrorPermissionDenied
	case goerrors.CategoryExternal:
		return ErrorSDKStartFailure
	default:
		return ErrorInternal
	}
}

func dependencyError(format string, args ...any) *goerrors.Error {
	return bridgeError(fmt.Sprintf(format, args...), goerrors.CategoryInternal, ErrorInternal)
}
