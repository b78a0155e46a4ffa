package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gridstonehq/gridstone-api/internal/domain"
)

// idParam extracts the {id} URL parameter as a UUID. Failures surface as
// field-scoped validation errors so the client sees which parameter was bad.
func idParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	if raw == "" {
		return uuid.Nil, domain.NewValidationError("id", "is required", domain.ErrValidation)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError("id", "must be a valid UUID", domain.ErrInvalidID)
	}

	return id, nil
}

// listWindow parses the limit and offset query parameters. Absent parameters
// stay zero so the store applies its defaults.
func listWindow(r *http.Request) (limit, offset int, err error) {
	limit, err = intQuery(r, "limit")
	if err != nil {
		return 0, 0, err
	}

	offset, err = intQuery(r, "offset")
	if err != nil {
		return 0, 0, err
	}

	return limit, offset, nil
}

// intQuery parses a non-negative integer query parameter, zero when absent.
func intQuery(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, domain.NewValidationError(name, "must be a non-negative integer", domain.ErrValidation)
	}

	return n, nil
}

// uuidQuery parses a UUID query parameter, uuid.Nil when absent.
func uuidQuery(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(name, "must be a valid UUID", domain.ErrInvalidID)
	}

	return id, nil
}

// boolQuery parses a boolean query parameter, false when absent.
func boolQuery(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, domain.NewValidationError(name, "must be true or false", domain.ErrValidation)
	}

	return v, nil
}
