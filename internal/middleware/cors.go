package middleware

import (
	"net/http"
	"strings"
)

var corsHeaders = map[string]string{
	"Access-Control-Allow-Methods":  "GET, POST, OPTIONS",
	"Access-Control-Allow-Headers":  "Content-Type, Accept, " + RequestIDHeader,
	"Access-Control-Expose-Headers": RequestIDHeader,
	"Access-Control-Max-Age":        "3600",
}

// originPolicy answers which Access-Control-Allow-Origin value, if any, a
// request origin gets.
type originPolicy struct {
	any     bool
	origins map[string]struct{}
}

// parseOrigins reads a comma-separated origin list. "*" anywhere in the list
// allows every origin.
func parseOrigins(list string) originPolicy {
	p := originPolicy{origins: make(map[string]struct{})}
	for _, o := range strings.Split(list, ",") {
		o = strings.ToLower(strings.TrimRight(strings.TrimSpace(o), "/"))
		switch o {
		case "":
		case "*":
			p.any = true
		default:
			p.origins[o] = struct{}{}
		}
	}
	return p
}

func (p originPolicy) enabled() bool { return p.any || len(p.origins) > 0 }

func (p originPolicy) allow(origin string) (string, bool) {
	if p.any {
		return "*", true
	}
	if origin == "" {
		return "", false
	}
	_, ok := p.origins[strings.ToLower(origin)]
	return origin, ok
}

// CORS answers cross-origin requests from the configured origins, a
// comma-separated list or "*". An empty list disables the headers.
// Preflight requests are answered here with 204.
func CORS(allowedOrigins string) func(http.Handler) http.Handler {
	policy := parseOrigins(allowedOrigins)

	return func(next http.Handler) http.Handler {
		if !policy.enabled() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if !policy.any {
				h.Add("Vary", "Origin")
			}
			if value, ok := policy.allow(r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", value)
				for k, v := range corsHeaders {
					h.Set(k, v)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
