package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/regmon-lab/themis/pkg/usecase"
	"github.com/regmon-lab/themis/pkg/utils/errutil"
)

// respondJSON writes the value as a JSON response
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// respondError maps use case errors onto HTTP status codes. Denied access
// is reported as 403, never disguised as 404: the two are deliberately
// distinguishable.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, usecase.ErrTaskNotFound),
		errors.Is(err, usecase.ErrTemplateNotFound),
		errors.Is(err, usecase.ErrDepartmentNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		status = http.StatusNotFound

	case errors.Is(err, usecase.ErrAccessDenied):
		status = http.StatusForbidden

	case errors.Is(err, usecase.ErrConflict):
		status = http.StatusConflict

	case errors.Is(err, usecase.ErrInvalidTransition),
		errors.Is(err, usecase.ErrTaskLocked):
		status = http.StatusUnprocessableEntity

	case errors.Is(err, usecase.ErrMissingDelayReason),
		errors.Is(err, usecase.ErrInvalidInput):
		status = http.StatusBadRequest
	}

	errutil.HandleHTTP(r.Context(), w, err, status)
}
