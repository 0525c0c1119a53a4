package handlers

import (
	"context"
	"net/http"
	"time"
)

// Middleware is the gorilla/mux middleware shape.
type Middleware = func(http.Handler) http.Handler

// SetHeaders sets each name, value pair on every response before the
// wrapped handler runs. It panics on an odd number of arguments.
func SetHeaders(pairs ...string) Middleware {
	if len(pairs)%2 != 0 {
		panic("handlers: SetHeaders needs name, value pairs")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			for i := 0; i < len(pairs); i += 2 {
				h.Set(pairs[i], pairs[i+1])
			}
			next.ServeHTTP(w, r)
		})
	}
}

var (
	// SecurityHeaders applies to every response, health included.
	SecurityHeaders = SetHeaders(
		"X-Content-Type-Options", "nosniff",
		"X-Frame-Options", "DENY",
		"Referrer-Policy", "no-referrer",
	)

	// NoCache keeps API responses out of shared caches.
	NoCache = SetHeaders("Cache-Control", "no-store", "Pragma", "no-cache")
)

// Deadline bounds the request context by timeout. Handlers observe it via
// ctx; nothing is written for them when it passes. Zero disables it.
func Deadline(timeout time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LimitBody caps request bodies at maxBytes. A read past the cap fails
// with *http.MaxBytesError, which handlers report as a bad request.
func LimitBody(maxBytes int64) Middleware {
	return func(next http.Handler) http.Handler {
		if maxBytes <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
