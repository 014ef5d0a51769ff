// Package respond renders failures as {"error": "..."} bodies, both for huma
// operations and for plain router handlers, and logs them by severity.
package respond

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/janisto/huma-hashchain/internal/api"
	applog "github.com/janisto/huma-hashchain/internal/platform/logging"
)

const (
	msgNotFound         = "resource not found"
	msgInternalServer   = "internal server error"
	contentTypeJSON     = "application/json"
	methodNotAllowedFmt = "method %s not allowed"
)

// StatusError is a huma.StatusError that marshals to api.ErrorResponse.
type StatusError struct {
	Message string `json:"error"`
	status  int
	cause   error
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return http.StatusText(e.status)
}

// GetStatus implements huma.StatusError.
func (e *StatusError) GetStatus() int {
	return e.status
}

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *StatusError) Unwrap() error {
	return e.cause
}

// Body returns the wire form of the error.
func (e *StatusError) Body() api.ErrorResponse {
	return api.ErrorResponse{Error: e.Error()}
}

var installOnce sync.Once

// Install routes huma's own errors (validation, negotiation, panics in
// handlers) through Error so every response shares the {"error"} shape.
func Install() {
	installOnce.Do(func() {
		huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
			return Error(context.Background(), status, msg, errs...)
		}
		huma.NewErrorWithContext = func(hctx huma.Context, status int, msg string, errs ...error) huma.StatusError {
			ctx := context.Background()
			if hctx != nil {
				ctx = hctx.Context()
			}
			return Error(ctx, status, msg, errs...)
		}
	})
}

// Error builds a StatusError and logs it: 5xx as errors, 4xx as warnings.
func Error(ctx context.Context, status int, msg string, errs ...error) *StatusError {
	msg = messageOrDefault(status, msg)
	cause := joinErrors(errs)
	logWithStatus(ctx, status, msg, cause)
	return &StatusError{Message: msg, status: status, cause: cause}
}

// Write serializes body as JSON after the status is final, so headers are emitted exactly once.
func Write(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(body)
}

// WriteError renders an {"error"} body for plain handlers.
func WriteError(w http.ResponseWriter, ctx context.Context, status int, msg string, errs ...error) error {
	se := Error(ctx, status, msg, errs...)
	return Write(w, se.GetStatus(), se.Body())
}

// NotFoundHandler emits a 404 {"error"} response.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := WriteError(w, r.Context(), http.StatusNotFound, msgNotFound); err != nil {
			applog.LogError(r.Context(), "failed to render not found", err)
		}
	}
}

// MethodNotAllowedHandler emits a 405 {"error"} response with an Allow header.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		msg := fmt.Sprintf(methodNotAllowedFmt, r.Method)
		if err := WriteError(w, r.Context(), http.StatusMethodNotAllowed, msg); err != nil {
			applog.LogError(r.Context(), "failed to render method not allowed", err)
		}
	}
}

// Recoverer converts panics into 500 {"error"} responses; the process keeps serving.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				err = fmt.Errorf("%w\n%s", err, debug.Stack())
				if writeErr := WriteError(w, r.Context(), http.StatusInternalServerError, msgInternalServer, err); writeErr != nil {
					applog.LogError(r.Context(), "failed to render internal error", writeErr)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// allowedMethods asks chi which methods match the request path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}
	routePath := rctx.RoutePath
	if routePath == "" {
		routePath = r.URL.Path
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	var allowed []string
	for _, method := range []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	} {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

func joinErrors(errs []error) error {
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return errors.Join(errs...)
	}
}

func messageOrDefault(status int, msg string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", status)
}

func logWithStatus(ctx context.Context, status int, msg string, err error) {
	if ctx == nil {
		ctx = context.Background()
	}
	fields := []zap.Field{zap.Int("status", status)}
	switch {
	case status >= 500:
		applog.LogError(ctx, msg, err, fields...)
	case status >= 400:
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		applog.LogWarn(ctx, msg, fields...)
	default:
		applog.LogInfo(ctx, msg, fields...)
	}
}
