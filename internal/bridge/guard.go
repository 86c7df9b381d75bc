package bridge

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

var (
	ErrOriginNotAllowed = errors.New("origin not allowed")
	ErrBadToken         = errors.New("missing or invalid bridge token")
	ErrNotJSON          = errors.New("content type must be application/json")
)

func normalizeOrigin(origin string) string {
	return strings.ToLower(strings.TrimRight(origin, "/"))
}

func (s *Server) originAllowed(origin string) bool {
	_, ok := s.origins[normalizeOrigin(origin)]
	return ok
}

// guard enforces the origin allowlist on every route and answers CORS
// preflights for allowed origins. Requests without an Origin header come
// from non-browser clients and pass through.
func (s *Server) guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !s.originAllowed(origin) {
			s.logger.Warning("Bridge", "rejected request from foreign origin", map[string]interface{}{
				"origin": origin,
				"method": r.Method,
				"path":   r.URL.Path,
			})
			s.writeError(w, http.StatusForbidden, "forbidden_origin", fmt.Errorf("%w: %s", ErrOriginNotAllowed, origin))
			return
		}

		h := w.Header()
		h.Set("Access-Control-Allow-Origin", origin)
		h.Add("Vary", "Origin")

		if r.Method == http.MethodOptions {
			h.Set("Access-Control-Allow-Methods", "GET, POST")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+TokenHeader)
			h.Set("Access-Control-Max-Age", "600")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// checkInvoke rejects invocations that are not JSON or lack the token.
func (s *Server) checkInvoke(r *http.Request) (int, string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return http.StatusUnsupportedMediaType, "unsupported_media_type", ErrNotJSON
	}

	if s.token != "" {
		got := r.Header.Get(TokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			return http.StatusUnauthorized, "unauthorized", ErrBadToken
		}
	}
	return 0, "", nil
}
