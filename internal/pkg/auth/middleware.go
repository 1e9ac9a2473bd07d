package auth

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type middleware struct {
	secret []byte
	exempt map[string]struct{}
	logger *zap.Logger
}

// NewMiddleware authenticates every request except those for the exempt paths.
func NewMiddleware(secret []byte, exemptPaths ...string) *middleware {
	exempt := make(map[string]struct{}, len(exemptPaths))
	for _, p := range exemptPaths {
		exempt[p] = struct{}{}
	}
	return &middleware{secret: secret, exempt: exempt, logger: zap.L()}
}

func (m *middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.exempt[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}
		id, err := ParseToken(bearerToken(r), m.secret)
		if err != nil {
			m.logger.Debug("rejected request", zap.String("path", r.URL.Path), zap.Error(err))
			status := http.StatusUnauthorized
			if errors.Is(err, ErrNoSigningKey) {
				status = http.StatusInternalServerError
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
