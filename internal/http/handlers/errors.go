package handlers

import (
	"errors"
	"net/http"

	"github.com/yungbote/coursekeeper-backend/internal/domain/catalog"
	pkgerrors "github.com/yungbote/coursekeeper-backend/internal/pkg/errors"
	"github.com/yungbote/coursekeeper-backend/internal/platform/apierr"
	"github.com/yungbote/coursekeeper-backend/internal/platform/sendgrid"
	"github.com/yungbote/coursekeeper-backend/internal/services"
)

// mapError turns service errors into API errors. fallback is the code of unexpected errors.
func mapError(err error, fallback string) *apierr.Error {
	var sg *sendgrid.HTTPError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, catalog.ErrSubjectNotFound):
		return apierr.New(http.StatusNotFound, "subject_not_found", err)
	case errors.Is(err, services.ErrEmailDisabled):
		return apierr.New(http.StatusServiceUnavailable, "email_disabled", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return apierr.New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrNotFound):
		return apierr.New(http.StatusNotFound, "not_found", err)
	case errors.As(err, &sg):
		return apierr.New(http.StatusBadGateway, "email_send_failed", err)
	default:
		return apierr.New(http.StatusInternalServerError, fallback, err)
	}
}
