package apierror

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/render"
)

// sensitiveFields are body keys whose values are never logged or echoed
var sensitiveFields = []string{"password", "token", "refreshToken", "accessToken", "secret", "apiKey"}

const redactionMarker = "[REDACTED]"

// maxBodySnapshot caps how much of a request body is buffered for error logs
const maxBodySnapshot = 1 << 16

type contextKey struct {
	name string
}

var (
	bodySnapshotKey = &contextKey{"BodySnapshot"}
	requestUserKey  = &contextKey{"RequestUserID"}
)

// WithRequestUser records the authenticated user id on the context so error
// logs can attribute the failing request.
func WithRequestUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requestUserKey, userID)
}

// BodyFromContext returns the decoded request-body snapshot captured by the
// BodySnapshot middleware, if any.
func BodyFromContext(ctx context.Context) (map[string]any, bool) {
	body, ok := ctx.Value(bodySnapshotKey).(map[string]any)
	return body, ok
}

func requestUser(ctx context.Context) string {
	if id, ok := ctx.Value(requestUserKey).(string); ok {
		return id
	}
	return ""
}

// Writer normalizes failures at the HTTP boundary, logs them with request
// context, and writes the response exactly once per request.
type Writer struct {
	environment string
}

// NewWriter creates a Writer. environment gates response verbosity: contextual
// data is withheld when it equals "production".
func NewWriter(environment string) *Writer {
	return &Writer{environment: environment}
}

type errorResponse struct {
	Status  int                   `json:"status"`
	Name    string                `json:"name"`
	Message string                `json:"message"`
	Code    Code                  `json:"code"`
	Fields  map[string]FieldError `json:"fields,omitempty"`
	Data    map[string]any        `json:"data,omitempty"`
}

// Respond classifies raw, emits one structured log entry with the request
// context snapshot, and writes the JSON error response.
func (wr *Writer) Respond(w http.ResponseWriter, r *http.Request, raw any) {
	normalized := Normalize(raw)

	slog.Error("request failed",
		"error", slog.GroupValue(
			slog.Int("statusCode", normalized.StatusCode),
			slog.String("name", normalized.Name),
			slog.String("message", normalized.Message),
			slog.String("code", string(normalized.Code)),
			slog.String("source", normalized.Source),
			slog.Time("timestamp", normalized.Timestamp),
			slog.Any("fields", normalized.Fields),
		),
		"request", requestContext(r),
		"stack", string(debug.Stack()),
	)

	resp := errorResponse{
		Status:  normalized.StatusCode,
		Name:    normalized.Name,
		Message: normalized.Message,
		Code:    normalized.Code,
		Fields:  normalized.Fields,
	}
	if wr.environment != "production" {
		resp.Data = normalized.Data
	}

	render.Status(r, normalized.StatusCode)
	render.JSON(w, r, resp)
}

// Recoverer funnels handler panics through the same normalization path as
// returned errors, so every failure leaves the service with the stable shape.
func (wr *Writer) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				wr.Respond(w, r, rec)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// BodySnapshot buffers up to maxBodySnapshot bytes of the request body and
// keeps a decoded copy on the context for error logging. The body itself is
// restored so downstream decoding is unaffected.
func BodySnapshot(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil || r.Body == http.NoBody {
			next.ServeHTTP(w, r)
			return
		}

		buf, err := io.ReadAll(io.LimitReader(r.Body, maxBodySnapshot))
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		r.Body = struct {
			io.Reader
			io.Closer
		}{io.MultiReader(bytes.NewReader(buf), r.Body), r.Body}

		var decoded map[string]any
		if json.Unmarshal(buf, &decoded) == nil {
			ctx := context.WithValue(r.Context(), bodySnapshotKey, decoded)
			r = r.WithContext(ctx)
		}
		next.ServeHTTP(w, r)
	})
}

// requestContext extracts a debugging snapshot of the failing request.
// Sensitive body fields are redacted on a copy, never in place.
func requestContext(r *http.Request) map[string]any {
	if r == nil {
		return map[string]any{"missing": "request was not provided"}
	}
	ctx := map[string]any{
		"url":       r.URL.String(),
		"method":    r.Method,
		"ip":        r.RemoteAddr,
		"userAgent": r.UserAgent(),
		"query":     r.URL.Query(),
	}
	if userID := requestUser(r.Context()); userID != "" {
		ctx["userId"] = userID
	}
	if body, ok := r.Context().Value(bodySnapshotKey).(map[string]any); ok {
		ctx["body"] = sanitizeBody(body)
	}
	return ctx
}

// sanitizeBody replaces the values of known sensitive keys on a shallow copy
func sanitizeBody(body map[string]any) map[string]any {
	if body == nil {
		return map[string]any{}
	}
	sanitized := make(map[string]any, len(body))
	for k, v := range body {
		sanitized[k] = v
	}
	for _, field := range sensitiveFields {
		if _, present := sanitized[field]; present {
			sanitized[field] = redactionMarker
		}
	}
	return sanitized
}
