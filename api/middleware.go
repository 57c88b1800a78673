package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/openshelf/openshelf/adapters/metrics"
	"github.com/openshelf/openshelf/domain/identity"
	"github.com/openshelf/openshelf/domain/validation"
	"github.com/openshelf/openshelf/pkg/apperr"
)

// maxBodyBytes caps JSON request bodies. Uploads use their own limit.
const maxBodyBytes = 1 << 20

// Instrument records request count, duration and in-flight gauge per
// route pattern.
func Instrument(collector *metrics.Collector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			collector.RequestsInFlight.Inc()
			defer collector.RequestsInFlight.Dec()

			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			pattern := chi.RouteContext(r.Context()).RoutePattern()
			if pattern == "" {
				pattern = r.URL.Path
			}
			status := strconv.Itoa(ww.Status())
			collector.RequestsTotal.WithLabelValues(r.Method, pattern, status).Inc()
			collector.RequestDuration.WithLabelValues(r.Method, pattern, status).Observe(time.Since(start).Seconds())
		})
	}
}

// RequestLogger logs one line per request.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("remote", r.RemoteAddr).
				Msg("request")
		})
	}
}

// extractToken pulls the access token from the request, checking the
// x-auth-token header, the accessToken query parameter, the accessToken
// cookie and finally the Authorization bearer header, in that order.
func extractToken(r *http.Request) string {
	if t := r.Header.Get("x-auth-token"); t != "" {
		return t
	}
	if t := r.URL.Query().Get("accessToken"); t != "" {
		return t
	}
	if c, err := r.Cookie("accessToken"); err == nil && c.Value != "" {
		return c.Value
	}
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && auth[:len(prefix)] == prefix {
		return auth[len(prefix):]
	}
	return ""
}

// RequireAuth verifies the access token and attaches the identity it
// carries to the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractToken(r)
		if token == "" {
			h.metrics.AuthFailures.WithLabelValues("missing_token").Inc()
			respondError(w, h.logger, apperr.Unauthorized("Access denied. No token provided"))
			return
		}

		id, err := h.tokens.Verify(token)
		if err != nil {
			h.metrics.AuthFailures.WithLabelValues("invalid_token").Inc()
			respondError(w, h.logger, apperr.Unauthorized("Invalid token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
	})
}

// OptionalAuth attaches the identity when a valid token is present but
// lets anonymous requests through. Used on public routes whose output
// widens for administrators.
func (h *Handler) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := extractToken(r); token != "" {
			if id, err := h.tokens.Verify(token); err == nil {
				r = r.WithContext(withIdentity(r.Context(), id))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAccess gates a route on any of roles and all of perms.
// Runs after RequireAuth.
func (h *Handler) RequireAccess(roles []identity.Role, perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := getIdentity(r.Context())
			if !ok || !id.Allowed(roles, perms) {
				h.metrics.AuthFailures.WithLabelValues("forbidden").Inc()
				respondError(w, h.logger, apperr.Forbidden("You do not have permission to access this route"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAdmin gates a route on an administrative role plus perm.
func (h *Handler) requireAdmin(perm string) func(http.Handler) http.Handler {
	return h.RequireAccess([]identity.Role{identity.RoleAdmin, identity.RoleSuperAdmin}, perm)
}

// ValidateBody decodes the JSON body, walks it against schema and
// stores the canonical payload in the request context.
func (h *Handler) ValidateBody(schema validation.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
			if err := dec.Decode(&body); err != nil {
				h.metrics.ValidationFailures.WithLabelValues(routePattern(r)).Inc()
				respondError(w, h.logger, apperr.BadRequest("Provide a valid JSON body"))
				return
			}

			checked, err := validation.Walk(schema, body)
			if err != nil {
				h.metrics.ValidationFailures.WithLabelValues(routePattern(r)).Inc()
				respondError(w, h.logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withPayload(r.Context(), checked)))
		})
	}
}

// ValidateParams walks URL and query parameters against schema and
// stores the canonical values in the request context.
func (h *Handler) ValidateParams(schema validation.Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := make(map[string]any, len(schema))
			rctx := chi.RouteContext(r.Context())
			for _, f := range schema {
				if v := rctx.URLParam(f.Name); v != "" {
					raw[f.Name] = v
					continue
				}
				if v := r.URL.Query().Get(f.Name); v != "" {
					raw[f.Name] = v
				}
			}

			checked, err := validation.WalkParams(schema, raw)
			if err != nil {
				h.metrics.ValidationFailures.WithLabelValues(routePattern(r)).Inc()
				respondError(w, h.logger, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(withParams(r.Context(), checked)))
		})
	}
}

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// mustIdentity returns the authenticated principal; RequireAuth
// guarantees it is present on protected routes.
func mustIdentity(r *http.Request) identity.Identity {
	id, _ := getIdentity(r.Context())
	return id
}
