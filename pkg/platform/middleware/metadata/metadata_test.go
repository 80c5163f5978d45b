package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"pigate/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"first forwarded hop", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:443", "203.0.113.9"},
		{"real ip header", map[string]string{"X-Real-IP": " 198.51.100.4 "}, "10.0.0.2:443", "198.51.100.4"},
		{"remote ipv4", nil, "192.0.2.1:5555", "192.0.2.1"},
		{"remote ipv6", nil, "[2001:db8::1]:5555", "2001:db8::1"},
		{"remote without port", nil, "192.0.2.1", "192.0.2.1"},
		{"nothing", nil, "", "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestSummarize(t *testing.T) {
	assert.Empty(t, Summarize(""))
	assert.Equal(t, "Chrome 120 on Windows 10", Summarize("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"))
	assert.Contains(t, Summarize("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"), "bot: ")
}

func TestClientMetadataMiddleware(t *testing.T) {
	var ip, ua, origin string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		origin = requestcontext.Origin(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/v1/transfers", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	r.Header.Set("User-Agent", "curl/8.5.0")
	r.Header.Set("Origin", "https://commerce.pi")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.0.2.1", ip)
	assert.Equal(t, "curl/8.5.0", ua)
	assert.Equal(t, "https://commerce.pi", origin)
}

func TestClientMetadataReplacesInvalidUTF8(t *testing.T) {
	var ip, ua, origin string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
		origin = requestcontext.Origin(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/v1/operations", nil)
	r.Header.Set("User-Agent", "bot\xff")
	r.Header.Set("Origin", "https://commerce.pi\xc3")
	r.Header.Set("X-Forwarded-For", "203.0.113.9\xfe, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "bot\uFFFD", ua)
	assert.Equal(t, "https://commerce.pi\uFFFD", origin)
	assert.Equal(t, "203.0.113.9\uFFFD", ip)
}
