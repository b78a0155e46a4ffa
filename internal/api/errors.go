package api

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/gridstonehq/gridstone-api/internal/api/shared"
	"github.com/gridstonehq/gridstone-api/internal/apiversion"
	"github.com/gridstonehq/gridstone-api/internal/domain"
	"github.com/gridstonehq/gridstone-api/internal/service/auth"
	"github.com/gridstonehq/gridstone-api/internal/store"
)

// Problem type URIs advertised in RFC 7807 bodies. Relative references; the
// platform does not serve dereferenceable problem documents.
const (
	ProblemTypeValidation         = "/errors/validation"
	ProblemTypeNotFound           = "/errors/not-found"
	ProblemTypeConflict           = "/errors/conflict"
	ProblemTypeBusinessRule       = "/errors/business-rule"
	ProblemTypeUnauthorized       = "/errors/unauthorized"
	ProblemTypeUnsupportedVersion = "/errors/unsupported-version"
	ProblemTypeRateLimited        = "/errors/rate-limited"
	ProblemTypeUnavailable        = "/errors/unavailable"
	ProblemTypeInternal           = "/errors/internal"
)

// MapErrorToProblem translates an internal error into the RFC 7807 problem
// returned to the client. The mapping is a fixed table over error kinds so
// that no internal error type or message leaks: anything unrecognized becomes
// a detail-free 500.
func MapErrorToProblem(err error) shared.Problem {
	var verrs validator.ValidationErrors

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, domain.ErrUnauthorized):
		p := shared.NewProblem(http.StatusUnauthorized, "Unauthorized", authDetail(err))
		p.Type = ProblemTypeUnauthorized
		return p

	// Not found errors
	case store.IsNotFoundError(err):
		p := shared.NewProblem(http.StatusNotFound, "Not Found", notFoundDetail(err))
		p.Type = ProblemTypeNotFound
		return p

	// Conflict errors: duplicates of unique keys and referenced rows
	case store.IsDuplicateError(err), store.IsConflictError(err):
		p := shared.NewProblem(http.StatusConflict, "Conflict", conflictDetail(err))
		p.Type = ProblemTypeConflict
		return p

	// Business rule violations: structurally valid input the rules reject
	case errors.Is(err, domain.ErrBusinessRule):
		p := shared.NewProblem(
			http.StatusUnprocessableEntity,
			"Business Rule Violation",
			businessRuleDetail(err),
		)
		p.Type = ProblemTypeBusinessRule
		return p

	// Request validation failures from DTO struct tags
	case errors.As(err, &verrs):
		p := shared.NewProblem(
			http.StatusBadRequest,
			"Validation Failed",
			"one or more fields failed validation",
		)
		p.Type = ProblemTypeValidation
		p.Errors = shared.ValidationDetails(err)
		return p

	// Domain and store level validation failures
	case errors.Is(err, domain.ErrValidation), errors.Is(err, store.ErrInvalidEntity):
		return domainValidationProblem(err)

	// Request bodies that never made it to validation
	case errors.Is(err, shared.ErrMalformedBody):
		p := shared.NewProblem(
			http.StatusBadRequest,
			"Validation Failed",
			"request body must be a single well-formed JSON document with known fields",
		)
		p.Type = ProblemTypeValidation
		return p

	// Version tokens the registry cannot serve
	case errors.Is(err, apiversion.ErrUnsupportedVersion):
		p := shared.NewProblem(http.StatusBadRequest, "Unsupported API Version", err.Error())
		p.Type = ProblemTypeUnsupportedVersion
		return p

	// Default: internal server error, no internal detail
	default:
		p := shared.NewProblem(http.StatusInternalServerError, "Internal Server Error", "")
		p.Type = ProblemTypeInternal
		return p
	}
}

// RespondWithMappedError translates err into its problem and writes it,
// logging the original error with its details redacted.
func RespondWithMappedError(w http.ResponseWriter, r *http.Request, err error) {
	shared.RespondWithProblemAndLog(w, r, MapErrorToProblem(err), err)
}

// authDetail returns the client-facing reason for an authentication failure.
// Signature and claim problems collapse into one message.
func authDetail(err error) string {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return "missing authorization token"
	case errors.Is(err, auth.ErrExpiredToken):
		return "authentication token is expired"
	case errors.Is(err, domain.ErrUnauthorized):
		return "operation is not permitted"
	default:
		return "authentication token is invalid"
	}
}

// notFoundDetail names the missing entity without echoing internal wrapping.
func notFoundDetail(err error) string {
	switch {
	case errors.Is(err, store.ErrProjectNotFound):
		return "project not found"
	case errors.Is(err, store.ErrMaterialNotFound):
		return "material not found"
	case errors.Is(err, store.ErrOrderNotFound):
		return "order not found"
	case errors.Is(err, store.ErrShipmentNotFound):
		return "shipment not found"
	default:
		return "resource not found"
	}
}

// conflictDetail names the conflicting constraint without echoing internal
// wrapping.
func conflictDetail(err error) string {
	switch {
	case errors.Is(err, store.ErrProjectCodeExists):
		return "a project with this code already exists"
	case errors.Is(err, store.ErrMaterialSKUExists):
		return "a material with this SKU already exists"
	case errors.Is(err, store.ErrOrderReferenceExists):
		return "an order with this reference already exists"
	case errors.Is(err, store.ErrOrderHasShipments):
		return "order cannot be deleted while shipments reference it"
	default:
		return "request conflicts with the current state of the resource"
	}
}

// businessRuleDetail surfaces the rule message. Rule messages are written for
// clients; the rule identifier stays internal.
func businessRuleDetail(err error) string {
	var bre *domain.BusinessRuleError
	if errors.As(err, &bre) {
		return bre.Message
	}
	return "request violates a business rule"
}

// domainValidationProblem builds the 400 problem for validation failures
// raised below the DTO layer. Field-scoped failures carry an errors map entry
// so clients see the same shape as tag validation failures.
func domainValidationProblem(err error) shared.Problem {
	p := shared.NewProblem(http.StatusBadRequest, "Validation Failed", "")
	p.Type = ProblemTypeValidation

	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		p.Detail = verr.Error()
		if verr.Field != "" {
			p.Errors = map[string]string{verr.Field: verr.Message}
		}
		return p
	}

	if errors.Is(err, store.ErrInvalidEntity) {
		p.Detail = "invalid entity data"
		return p
	}

	p.Detail = "request failed validation"
	return p
}
