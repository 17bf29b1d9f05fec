// Package errs holds the error values shared by the domain, the use cases and
// the adapters of the marketplace service.
//
// Validation failures:
//   - ValueIsRequiredError, for a missing value
//   - ValueIsInvalidError, for a value that failed parsing or checks
//   - ValueIsOutOfRangeError, for a value outside its bounds
//
// Persistence failures:
//   - ObjectNotFoundError, for a lookup by id that matched nothing
//   - ObjectConflictError, for a write the current row state does not allow
//
// Every type wraps its sentinel (ErrValueIsRequired, ErrObjectNotFound, ...)
// and an optional cause, so callers match with errors.Is and keep the chain
// with errors.Unwrap. IsValidationError reports whether any of the validation
// sentinels is in the chain.
//
// The HTTP adapter turns the validation family into 422, ErrObjectNotFound
// into 404 and ErrObjectConflict into 409.
package errs
