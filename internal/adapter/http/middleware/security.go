package middleware

import "net/http"

// SecurityHeaders sets response headers appropriate for a JSON API
// that also serves downloadable artifacts.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing on served artifacts
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Nothing here is meant to be framed
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		w.Header().Set("Referrer-Policy", "no-referrer")

		// HSTS only when actually served over TLS
		if isTLS(r) {
			w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		next.ServeHTTP(w, r)
	})
}

// isTLS checks both the connection state and the X-Forwarded-Proto
// header for requests behind a reverse proxy.
func isTLS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
