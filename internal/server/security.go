package server

import (
	"net/http"
	"slices"
	"strings"
)

// SecurityConfig holds the HTTP hardening settings of the server.
type SecurityConfig struct {
	// EnableCORS adds CORS headers for allowed origins.
	EnableCORS bool
	// AllowedOrigins lists origins allowed by CORS; "*" allows any.
	AllowedOrigins []string
	// AllowedMethods lists the methods advertised to CORS clients.
	AllowedMethods []string
	// MaxBodyBytes caps the size of request bodies.
	MaxBodyBytes int64
	// MaxOperandDigits caps the length of each operand string.
	MaxOperandDigits int
	// MaxResultWords caps the size of the value a request may produce,
	// as estimated from its operands before evaluation. Zero disables it.
	MaxResultWords int
}

const defaultMaxOperandDigits = 1 << 20

// DefaultSecurityConfig returns the settings used by serve mode.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{
		EnableCORS:       true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		MaxBodyBytes:     4 << 20,
		MaxOperandDigits: defaultMaxOperandDigits,
		MaxResultWords:   2 * (defaultMaxOperandDigits/8 + 1), // product of two maximal operands
	}
}

// SecurityMiddleware sets security headers on every response, adds CORS
// headers for allowed origins and answers preflight requests itself.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		if config.EnableCORS {
			if origin, ok := allowedOrigin(config.AllowedOrigins, r.Header.Get("Origin")); ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", strings.Join(config.AllowedMethods, ", "))
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
				h.Set("Access-Control-Max-Age", "86400")
			}
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// allowedOrigin returns the value of Access-Control-Allow-Origin for origin.
func allowedOrigin(allowed []string, origin string) (string, bool) {
	if slices.Contains(allowed, "*") {
		return "*", true
	}
	if origin != "" && slices.Contains(allowed, origin) {
		return origin, true
	}
	return "", false
}
