package http

import (
	"context"
	"net/http"
	"strings"
)

// requireSession lets a request through only when its bearer token names a
// live session, and stores the token in the request context. Otherwise it
// answers 401.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, newUnauthorizedError())
			return
		}

		if _, err := s.deps.CurrentUser.Handle(r.Context(), token); err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func sessionToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKeyToken).(string)
	return token
}
