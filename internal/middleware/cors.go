package middleware

import (
	"net/http"
)

// Origins is a CORS allow-list. "*" admits every origin.
type Origins struct {
	any     bool
	allowed map[string]struct{}
}

func NewOrigins(origins []string) *Origins {
	o := &Origins{allowed: make(map[string]struct{}, len(origins))}
	for _, origin := range origins {
		if origin == "*" {
			o.any = true
			continue
		}
		o.allowed[origin] = struct{}{}
	}
	return o
}

func (o *Origins) Allowed(origin string) bool {
	if o.any {
		return true
	}
	_, ok := o.allowed[origin]
	return ok
}

// CORS echoes allowed origins with credentials enabled and answers preflight requests.
func CORS(origins *Origins) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && origins.Allowed(origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Access-Control-Allow-Headers, Authorization, X-Requested-With")
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
