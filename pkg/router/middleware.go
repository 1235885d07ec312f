package router

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/actionhero/docsite/pkg/logging"
)

// Recovery turns a panicking handler into a 500 and logs the stack.
func Recovery(logger logging.Logger) Middleware {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic serving request",
						logging.String("path", r.URL.Path),
						logging.String("panic", fmt.Sprint(rec)),
						logging.String("stack", string(debug.Stack())),
					)
					http.Error(w, "Internal Server Error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// SecureHeadersConfig configures security headers.
type SecureHeadersConfig struct {
	// FrameOptions is sent as X-Frame-Options. Default "DENY".
	FrameOptions string

	ContentTypeNosniff bool

	// ReferrerPolicy default "strict-origin-when-cross-origin".
	ReferrerPolicy string

	// HSTSMaxAge in seconds. HSTS is only sent over HTTPS and only when
	// positive.
	HSTSMaxAge int

	// ContentSecurityPolicy overrides the generated nonce policy.
	ContentSecurityPolicy string

	// CSPNonceEnabled generates a per-request nonce for the page's inline
	// style and script tags.
	CSPNonceEnabled bool
}

// DefaultSecureHeadersConfig returns the defaults served by docsite.
func DefaultSecureHeadersConfig() SecureHeadersConfig {
	return SecureHeadersConfig{
		FrameOptions:       "DENY",
		ContentTypeNosniff: true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		HSTSMaxAge:         31536000,
		CSPNonceEnabled:    true,
	}
}

type cspNonceKey struct{}

// CSPNonce returns the nonce SecureHeaders attached to ctx, or "".
func CSPNonce(ctx context.Context) string {
	if nonce, ok := ctx.Value(cspNonceKey{}).(string); ok {
		return nonce
	}
	return ""
}

func generateNonce() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}

// defaultCSP allows inline style attributes because button press styling
// is rendered server side as a style attribute.
func defaultCSP(nonce string) string {
	return "default-src 'self'; " +
		"script-src 'self' 'nonce-" + nonce + "'; " +
		"style-src 'self' 'nonce-" + nonce + "'; " +
		"style-src-attr 'unsafe-inline'; " +
		"img-src 'self' data:; " +
		"connect-src 'self' ws: wss:; " +
		"frame-ancestors 'none'; " +
		"base-uri 'self'"
}

// SecureHeaders adds security headers with the default config.
func SecureHeaders() Middleware {
	return SecureHeadersWithConfig(DefaultSecureHeadersConfig())
}

// SecureHeadersWithConfig adds security headers described by config.
func SecureHeadersWithConfig(config SecureHeadersConfig) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if config.FrameOptions != "" {
				h.Set("X-Frame-Options", config.FrameOptions)
			}
			if config.ContentTypeNosniff {
				h.Set("X-Content-Type-Options", "nosniff")
			}
			if config.ReferrerPolicy != "" {
				h.Set("Referrer-Policy", config.ReferrerPolicy)
			}
			if config.HSTSMaxAge > 0 && (r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https") {
				h.Set("Strict-Transport-Security", "max-age="+strconv.Itoa(config.HSTSMaxAge)+"; includeSubDomains")
			}

			ctx := r.Context()
			switch {
			case config.ContentSecurityPolicy != "":
				h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			case config.CSPNonceEnabled:
				nonce := generateNonce()
				ctx = context.WithValue(ctx, cspNonceKey{}, nonce)
				h.Set("Content-Security-Policy", defaultCSP(nonce))
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
