// Package metadata captures the client IP, user agent and origin of each
// request, plus a short client summary parsed from the user agent.
package metadata

import (
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"pigate/pkg/requestcontext"
)

// ClientMetadata should run before any handler that records request metadata.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := header(r, "User-Agent")
		ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r), ua, header(r, "Origin"))
		ctx = requestcontext.WithClientSummary(ctx, Summarize(ua))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Summarize renders a user agent as "Browser Version on OS", "bot: Name" or
// "" when nothing can be parsed.
func Summarize(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return ""
	}
	ua := useragent.New(userAgent)
	name, version := ua.Browser()
	if ua.Bot() {
		return "bot: " + name
	}

	var b strings.Builder
	b.WriteString(name)
	if major, _, _ := strings.Cut(version, "."); major != "" {
		b.WriteString(" " + major)
	}
	if os := ua.OS(); os != "" {
		b.WriteString(" on " + os)
	}
	if ua.Mobile() {
		b.WriteString(" (mobile)")
	}
	return strings.TrimSpace(b.String())
}

// ClientIPFromRequest prefers the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address without its port.
func ClientIPFromRequest(r *http.Request) string {
	if xff := header(r, "X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := header(r, "X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// header returns a header value with invalid UTF-8 replaced, since headers
// are raw bytes and these values end up in JSON audit records.
func header(r *http.Request, name string) string {
	return strings.ToValidUTF8(r.Header.Get(name), "\uFFFD")
}
