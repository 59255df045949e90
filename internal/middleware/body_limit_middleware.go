package middleware

import (
	"net/http"
)

// BodyLimitMiddleware caps request bodies and parses urlencoded forms up
// front, so anything that reads the form later (the _method override, the
// handlers) only ever sees a body within the cap. Parse failures go to
// onError, which sees *http.MaxBytesError for oversized bodies.
func BodyLimitMiddleware(maxBytes int64, onError func(http.ResponseWriter, *http.Request, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body == nil || r.Body == http.NoBody {
				next.ServeHTTP(w, r)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			if err := r.ParseForm(); err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
