// internal/middleware/context.go
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/taskhub/taskhub/internal/models"
)

// ContextKey types request-scoped values stored by the middleware chain.
type ContextKey string

const (
	ContextKeyPrincipal ContextKey = "principal"
	ContextKeyIPAddress ContextKey = "ip_address"
	ContextKeyUserAgent ContextKey = "user_agent"
)

// WithPrincipal stores the authenticated principal on the context.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, ContextKeyPrincipal, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(ContextKeyPrincipal).(models.Principal)
	return p, ok
}

// ClientInfo carries request origin metadata for security logging.
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// WithClientInfo extracts the client IP and user agent from the request
// and stores them on the context.
func WithClientInfo(ctx context.Context, r *http.Request) context.Context {
	info := ExtractClientInfo(r)
	if info.IPAddress != "" {
		ctx = context.WithValue(ctx, ContextKeyIPAddress, info.IPAddress)
	}
	if info.UserAgent != "" {
		ctx = context.WithValue(ctx, ContextKeyUserAgent, info.UserAgent)
	}
	return ctx
}

// ClientInfoFromContext returns the client metadata stored by WithClientInfo.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	var info ClientInfo
	if ip, ok := ctx.Value(ContextKeyIPAddress).(string); ok {
		info.IPAddress = ip
	}
	if ua, ok := ctx.Value(ContextKeyUserAgent).(string); ok {
		info.UserAgent = ua
	}
	return info
}

// ExtractClientInfo resolves the originating IP, preferring proxy headers
// over the socket address.
func ExtractClientInfo(r *http.Request) ClientInfo {
	info := ClientInfo{UserAgent: r.UserAgent()}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// The first entry is the original client.
		parts := strings.Split(forwarded, ",")
		info.IPAddress = strings.TrimSpace(parts[0])
		return info
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		info.IPAddress = strings.TrimSpace(realIP)
		return info
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		info.IPAddress = r.RemoteAddr
		return info
	}
	info.IPAddress = host
	return info
}
