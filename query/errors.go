package query

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-idcapture/core"
)

func queryDependencyError(message string) error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(core.ErrorInternal)
}

func queryValidationError(field string, message string) error {
	return goerrors.NewValidation("query: validation failed", goerrors.FieldError{
		Field:   field,
		Message: message,
	}).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorInvalidInput).
		WithSeverity(goerrors.SeverityError)
}

func queryNoSessionError() error {
	return goerrors.New(core.MessageNotInitialized, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.ErrorNotInitialized)
}
