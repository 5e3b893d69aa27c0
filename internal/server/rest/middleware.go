package rest

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/bookreview/internal/common"
	"github.com/dmitrijs2005/bookreview/internal/server/access"
	"github.com/dmitrijs2005/bookreview/internal/server/auth"
)

// gate resolves the caller before any handler runs. A bearer token, when
// sent, must be valid on every route; routes the policy marks Authenticated
// also require one to be present.
func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requirement := s.policy.Evaluate(r.Method, r.URL.Path)

		token, ok := bearerToken(r)
		if !ok {
			if requirement == access.Authenticated {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		subject, err := s.tokens.Validate(token)
		if err != nil {
			s.logger.Debug(r.Context(), "token rejected", "path", r.URL.Path, "error", err)
			msg := "invalid token"
			if errors.Is(err, common.ErrTokenExpired) {
				msg = "token expired"
			}
			writeError(w, http.StatusUnauthorized, msg)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithSubject(r.Context(), subject)))
	})
}

// bearerToken extracts the token of an "Authorization: Bearer <token>"
// header. Other schemes count as no token.
func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	scheme, token, found := strings.Cut(h, " ")
	if !found || !strings.EqualFold(scheme, strings.TrimSpace(common.BearerPrefix)) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// rateLimit throttles a route per client address.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow(clientIP(r)) {
			s.logger.Warn(r.Context(), "rate limit exceeded", "path", r.URL.Path, "client", clientIP(r))
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the host part of RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when one was sent.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// requestLogger writes one structured line per request and feeds the
// HTTP metrics.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := routePattern(r)
		elapsed := time.Since(start)

		if s.metrics != nil {
			s.metrics.observe(r.Method, route, status, elapsed)
		}

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// routePattern is the matched chi pattern, so metrics do not fan out per id.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}
