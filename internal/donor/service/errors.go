package service

import (
	"context"
	"errors"

	"sndot/internal/donor/validation"
	dErrors "sndot/pkg/domain-errors"
	"sndot/pkg/platform/sentinel"
)

// translate maps store sentinels to domain codes. Errors that already carry a
// code pass through untouched.
func translate(err error, message string) error {
	if err == nil {
		return nil
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, message)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, message)
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, message)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, message)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, message)
	}
}

func validationError(errs validation.ErrorMap) error {
	return dErrors.Wrap(errs, dErrors.CodeValidation, "donor record failed validation")
}
