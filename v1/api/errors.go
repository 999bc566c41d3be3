package api

import (
	"net/http"

	"github.com/Aleph-Alpha/satmeta/v1/apierrors"
)

// Queries holds the errors of malformed query strings.
var Queries = struct {
	InvalidBoolError *apierrors.ResponseError
	InvalidTimeError *apierrors.ResponseError
}{
	InvalidBoolError: apierrors.New(http.StatusUnprocessableEntity,
		"The query parameter must be a boolean."),
	InvalidTimeError: apierrors.New(http.StatusUnprocessableEntity,
		"The query parameter must be an ISO 8601 date and time."),
}

// errorResponse writes err as a plain text body. Errors that are not a
// ResponseError are logged and reported as 500 without details.
func (s *Server) errorResponse(w http.ResponseWriter, r *http.Request, err error) {
	re, ok := apierrors.As(err)
	if !ok {
		s.logger.ErrorWithContext(r.Context(), "Request failed", err, map[string]interface{}{
			"path": r.URL.Path,
		})
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	http.Error(w, re.Error(), re.StatusCode())
}
