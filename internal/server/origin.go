package server

import (
	"net/http"
	"net/url"
	"strings"
)

// OriginPolicy decides which browser origins may open a formatting session.
// Requests without an Origin header come from editors and tools, not
// browsers, and are always accepted.
type OriginPolicy struct {
	// Allowed lists exact origins. "*" accepts every origin.
	Allowed []string
}

// Check implements websocket.Upgrader.CheckOrigin. Without an allow list
// only loopback origins and editor webviews are accepted.
func (p OriginPolicy) Check(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, a := range p.Allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	if len(p.Allowed) > 0 {
		return false
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.HasPrefix(u.Scheme, "vscode-") {
		return true
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// securityHeaders adds the headers every response carries.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
