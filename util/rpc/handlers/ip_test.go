package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetIPAddress(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expected   string
	}{
		{"remote", "8.8.8.8:5678", nil, "8.8.8.8"},
		{"remoteIPv6", "[2001:db8::1]:5678", nil, "2001:db8::1"},
		{"forwarded", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "1.1.1.1, 8.8.4.4, 10.0.0.2"}, "8.8.4.4"},
		{"realIp", "10.0.0.1:80", map[string]string{"X-Real-Ip": "9.9.9.9"}, "9.9.9.9"},
		{"privateOnly", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "192.168.1.1, 100.64.0.3"}, "10.0.0.1"},
		{"malformed", "10.0.0.1:80", map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remoteAddr

			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}

			assert.Equal(t, tt.expected, GetIPAddress(r))
		})
	}
}

func TestRealIP(t *testing.T) {
	var ip string
	var ok bool

	handler := RealIP(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, ok = GetIPAddressFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodPost, "/", nil)
	r.RemoteAddr = "8.8.8.8:1234"
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.True(t, ok)
	assert.Equal(t, "8.8.8.8", ip)
}
