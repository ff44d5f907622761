package apierror

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const defaultMessage = "An unexpected error occurred"

// taxonomyEntry maps a known upstream error name to a taxonomy slot
type taxonomyEntry struct {
	statusCode int
	name       string
	message    string
	code       Code
}

// errorNameMap maps concrete error type names of known collaborators to
// taxonomy entries. Names not present here degrade to an internal error.
var errorNameMap = map[string]taxonomyEntry{
	"SyntaxError":        {400, "BadRequestError", "Malformed request payload", CodeBadRequest},
	"UnmarshalTypeError": {400, "BadRequestError", "Malformed request payload", CodeBadRequest},
	"NumError":           {400, "BadRequestError", "Malformed numeric value", CodeBadRequest},
	"ConnectError":       {500, "DatabaseError", "Database operation failed", CodeDatabase},
}

// Normalize classifies any failure value into a *Error. It is total: no input,
// including nil, a primitive or a foreign error type, makes it panic. Inputs
// that cannot be classified degrade to a 500 internal error.
func Normalize(raw any) *Error {
	switch v := raw.(type) {
	case nil:
		return Internal(defaultMessage).WithData("originalError", "<nil>")
	case *Error:
		if v == nil {
			return Internal(defaultMessage).WithData("originalError", "<nil>")
		}
		return v
	case string:
		return Internal(v)
	case error:
		return normalizeError(v)
	case map[string]any:
		// Decoded JSON object carrying an error-like shape
		if msg, ok := v["message"].(string); ok && msg != "" {
			return Internal(msg).WithData("originalError", v)
		}
		return Internal(defaultMessage).WithData("originalError", v)
	default:
		return Internal(defaultMessage).WithData("originalError", fmt.Sprint(v))
	}
}

func normalizeError(err error) *Error {
	// Already classified
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// Errors that declare their own HTTP status
	if status, ok := statusOf(err); ok {
		switch status {
		case 400:
			return BadRequest(messageOr(err, "Bad request"), nil).WrapErr(err)
		case 401:
			return Unauthorized(messageOr(err, "Unauthorized")).WrapErr(err)
		case 403:
			return Forbidden(messageOr(err, "Forbidden")).WrapErr(err)
		case 404:
			return NotFound(messageOr(err, "Not found"), "").WrapErr(err)
		case 422:
			return Validation(messageOr(err, "Validation failed"), fieldsOf(err)).WrapErr(err)
		}
		// Unknown status codes fall through to name-based dispatch
	}

	// Validation carriers keep their field details
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		fields := valErr.Fields
		if fields == nil {
			fields = map[string]FieldError{}
		}
		return Validation(valErr.Error(), fields).WrapErr(err)
	}

	// Storage-layer failures
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) || errors.Is(err, pgx.ErrNoRows) {
		return Database("Database operation failed", err.Error()).WrapErr(err)
	}

	// Token verification failures
	if errors.Is(err, jwt.ErrTokenExpired) ||
		errors.Is(err, jwt.ErrTokenMalformed) ||
		errors.Is(err, jwt.ErrTokenNotValidYet) ||
		errors.Is(err, jwt.ErrSignatureInvalid) ||
		errors.Is(err, jwt.ErrTokenUnverifiable) ||
		errors.Is(err, jwt.ErrTokenSignatureInvalid) {
		return Unauthorized(messageOr(err, "Authentication failed")).WrapErr(err)
	}

	// Remaining known collaborator errors, dispatched by type name
	for e := err; e != nil; e = errors.Unwrap(e) {
		if entry, ok := errorNameMap[typeName(e)]; ok {
			out := newError(entry.statusCode, entry.name, messageOr(err, entry.message), entry.code)
			if entry.code == CodeDatabase {
				out.WithData("originalError", err.Error())
			}
			return out.WrapErr(err)
		}
	}

	return Internal(messageOr(err, defaultMessage)).WrapErr(err)
}

// statusOf walks the error chain looking for a declared HTTP status
func statusOf(err error) (int, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if sc, ok := e.(interface{ StatusCode() int }); ok {
			return sc.StatusCode(), true
		}
		if sc, ok := e.(interface{ HTTPStatus() int }); ok {
			return sc.HTTPStatus(), true
		}
	}
	return 0, false
}

// fieldsOf walks the error chain looking for attached field details
func fieldsOf(err error) map[string]FieldError {
	for e := err; e != nil; e = errors.Unwrap(e) {
		if fc, ok := e.(interface{ FieldErrors() map[string]FieldError }); ok {
			return fc.FieldErrors()
		}
	}
	return nil
}

func messageOr(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}

// typeName reports the concrete type name of an error value, without the
// package qualifier, so json.SyntaxError and strconv.NumError can be matched
// in errorNameMap.
func typeName(err error) string {
	t := reflect.TypeOf(err)
	if t == nil {
		return ""
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
