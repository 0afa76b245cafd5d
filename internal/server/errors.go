package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/cv-tailor/internal/extraction"
	"github.com/jonathan/cv-tailor/internal/jobs"
	"github.com/jonathan/cv-tailor/internal/keywords"
	"github.com/jonathan/cv-tailor/internal/session"
	"github.com/jonathan/cv-tailor/internal/templates"
)

// httpStatus maps a domain error to the HTTP status code it should
// produce. Unrecognized errors are treated as internal.
func httpStatus(err error) int {
	var (
		sessionNotFound *session.NotFoundError
		validation      *extraction.ValidationError
		unsupported     *extraction.UnsupportedTypeError
		emptyExtract    *extraction.EmptyExtractionError
		extractFailed   *extraction.ExtractError
		templateMissing *templates.NotFoundError
		appNotFound     *jobs.ApplicationNotFoundError
		jdTooShort      *keywords.InsufficientError
	)
	switch {
	case errors.As(err, &sessionNotFound), errors.As(err, &appNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &templateMissing):
		return http.StatusBadRequest
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &emptyExtract), errors.As(err, &extractFailed), errors.As(err, &jdTooShort):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// domainError writes an error response with the status derived from the
// error's type.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	s.errorResponse(w, httpStatus(err), err.Error())
}
