// Package apierror provides the error taxonomy and normalization pipeline for
// simple-org.
//
// Every failure that leaves the service, whatever its origin, is folded into a
// single structured Error with a stable shape: an HTTP status from the fixed
// set {400, 401, 403, 404, 422, 500}, a name, a message, one of seven stable
// codes, optional field-level details and optional contextual data.
//
// # Creating errors
//
//	return apierror.NotFound(id, "User")
//	return apierror.Validation("Email is required", map[string]apierror.FieldError{
//		"email": {Message: "required"},
//	})
//	return apierror.Database("Database operation failed", err.Error())
//
// # Normalization
//
// Normalize accepts any value and always returns a classified *Error. Inputs
// are matched in order: *Error pass-through, plain strings, errors with a
// declared HTTP status, validation carriers, storage failures (pgconn/pgx),
// token failures (golang-jwt sentinels), a static name lookup table for the
// remaining known collaborators, then a 500 internal fallback. It never
// panics.
//
// # HTTP boundary
//
// Writer.Respond is the single place a failing request is logged and written.
// The log entry carries the full error record plus a request snapshot (URL,
// method, client IP, authenticated user id, user agent, query and a sanitized
// body copy). Body values under password, token, refreshToken, accessToken,
// secret and apiKey are replaced with a redaction marker before logging.
// Contextual error data is only included in responses outside production.
//
// Writer.Recoverer converts handler panics into the same response shape.
// BodySnapshot must be installed ahead of handlers for body context to be
// available in error logs.
package apierror
