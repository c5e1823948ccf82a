package server

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/DriveBook/DriveBook/internal/common/apperr"
	"github.com/DriveBook/DriveBook/internal/common/auth"
	"github.com/DriveBook/DriveBook/internal/common/config"
	"github.com/DriveBook/DriveBook/internal/common/logger"
	"github.com/DriveBook/DriveBook/internal/common/middleware"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares so the first argument runs outermost.
func Chain(middlewares ...Middleware) Middleware {
	return func(next http.Handler) http.Handler {
		h := next
		for i := len(middlewares) - 1; i >= 0; i-- {
			mw := middlewares[i]
			if mw == nil {
				continue
			}
			h = mw(h)
		}
		return h
	}
}

// statusRecorder captures the response status for access logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// RecoveryMiddleware keeps a handler panic from killing the process and logs
// the stack.
func RecoveryMiddleware(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if log != nil {
						log.Errorf("panic in http handler method=%s path=%s err=%v stack=%s",
							r.Method, r.URL.Path, rec, string(debug.Stack()))
					}
					WriteJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// AccessLogMiddleware records method, path, status, and latency per request.
func AccessLogMiddleware(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			cost := time.Since(start)

			if log != nil {
				fields := map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
					"status": sr.status,
					"cost":   cost.String(),
				}
				if sr.status >= http.StatusInternalServerError {
					log.WithFields(fields).Warn("http request failed")
				} else {
					log.WithFields(fields).Info("http request ok")
				}
			}
		})
	}
}

// TracingMiddleware opens a server span per request:
// - extracts the parent span context from the incoming headers
// - injects the span into the request context for downstream use
func TracingMiddleware(serviceName string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracer := opentracing.GlobalTracer()

			var parent opentracing.SpanContext
			if sc, err := tracer.Extract(opentracing.HTTPHeaders,
				opentracing.HTTPHeadersCarrier(r.Header)); err == nil {
				parent = sc
			}

			operation := r.Method + " " + r.URL.Path

			var span opentracing.Span
			if parent != nil {
				span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
			} else {
				span = tracer.StartSpan(operation)
			}
			defer span.Finish()

			ext.SpanKindRPCServer.Set(span)
			ext.Component.Set(span, "http")
			ext.HTTPMethod.Set(span, r.Method)
			ext.HTTPUrl.Set(span, r.URL.Path)
			if serviceName != "" {
				span.SetTag("service", serviceName)
			}

			ctx := opentracing.ContextWithSpan(r.Context(), span)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// JWTAuthMiddleware authenticates requests:
// - public paths pass through untouched
// - otherwise `Authorization: Bearer <token>` is required and verified
// - the parsed identity lands in the request context
func JWTAuthMiddleware(cfg config.AuthConfig, log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || isPublicPath(cfg.PublicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if strings.TrimSpace(cfg.JWTSecret) == "" {
				if log != nil {
					log.Warn("auth enabled but jwt_secret is empty")
				}
				WriteError(w, fmt.Errorf("auth not configured: %w", apperr.ErrUnauthorized))
				return
			}

			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if raw == "" {
				WriteError(w, fmt.Errorf("missing authorization: %w", apperr.ErrUnauthorized))
				return
			}
			tokenStr := raw
			if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
				tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
			}
			if tokenStr == "" {
				WriteError(w, fmt.Errorf("invalid authorization: %w", apperr.ErrUnauthorized))
				return
			}

			claims, err := auth.ParseAccessToken(cfg, tokenStr)
			if err != nil {
				WriteError(w, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized))
				return
			}

			ctx := ContextWithAuth(r.Context(), AuthInfo{
				Subject: claims.Subject,
				Roles:   claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RBACMiddleware enforces the route->roles table:
// - if the longest matching "METHOD /prefix" entry is non-empty, the token
//   roles must intersect it
// - routes without an entry only require authentication
func RBACMiddleware(cfg config.AuthConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || isPublicPath(cfg.PublicPaths, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			required := requiredRoles(cfg.RBAC, r.Method, r.URL.Path)
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			ai, ok := AuthFromContext(r.Context())
			if !ok {
				WriteError(w, fmt.Errorf("missing auth context: %w", apperr.ErrUnauthorized))
				return
			}
			if hasAnyRole(ai.Roles, required) {
				next.ServeHTTP(w, r)
				return
			}
			WriteError(w, fmt.Errorf("permission denied: %w", apperr.ErrForbidden))
		})
	}
}

// RateLimitMiddleware rejects requests to the covered path prefixes once the
// limiter is exhausted.
func RateLimitMiddleware(limiter middleware.RateLimiter, prefixes []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil || !pathCovered(prefixes, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(r.Context()) {
				WriteJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requiredRoles picks the roles of the longest matching RBAC entry. Keys are
// "METHOD /path-prefix".
func requiredRoles(rbac map[string][]string, method, path string) []string {
	var best []string
	bestLen := -1
	for key, roles := range rbac {
		m, prefix, ok := strings.Cut(key, " ")
		if !ok {
			continue
		}
		if !strings.EqualFold(m, method) {
			continue
		}
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			bestLen = len(prefix)
			best = roles
		}
	}
	return best
}

func hasAnyRole(got, required []string) bool {
	if len(got) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(got))
	for _, r := range got {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	for _, r := range required {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func isPublicPath(public []string, path string) bool {
	if path == "" || len(public) == 0 {
		return false
	}
	for _, p := range public {
		if strings.TrimSpace(p) == path {
			return true
		}
	}
	return false
}

func pathCovered(prefixes []string, path string) bool {
	for _, p := range prefixes {
		p = strings.TrimSpace(p)
		if p != "" && strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
