package auth

import (
	"fmt"
	"strings"
	"testing"
)

func TestAccessKey_Sign(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		verb     string
		epoch    int64
		body     string
		path     string
		expected string
	}{
		{
			name:     "get without body",
			key:      "secret",
			verb:     "GET",
			epoch:    1700000000000,
			body:     "",
			path:     "/device/groups",
			expected: "ZjY3NTIwODIzMTFkODFlZThjMDM1OWZmNjIzZGJmYTUyNzY3YTVjMDEyNGRkN2Y0ZTM5MjljZTZmMWVlMjgxZQ==",
		},
		{
			name:     "post with json body",
			key:      "secret",
			verb:     "POST",
			epoch:    1700000000000,
			body:     `{"name":"web01"}`,
			path:     "/website/websites",
			expected: "OTEwYzRiZjk3YTBjZTg3YTZkM2RlMjJmMGU5Njc3NGM2M2E5ZTJmYmJlZTg2ZTg2NzMzOTlmZWEyOTI4YmNmZA==",
		},
		{
			name:     "different key and epoch",
			key:      "another-key",
			verb:     "GET",
			epoch:    1712345678901,
			body:     "",
			path:     "/setting/propertysources",
			expected: "ZmFhMDUxMDM2ZmVkYzgzNWEwY2ZhMGQ3Y2U2OWE4OWYxOTRiNWU0ZmIzYTIzNjYxMWUxMDI5Njk1NmNhYjNjMQ==",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := NewAccessKey(tt.key)
			got := key.Sign(tt.verb, tt.epoch, []byte(tt.body), tt.path)
			if got != tt.expected {
				t.Errorf("Sign() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAccessKey_SignDeterministic(t *testing.T) {
	key := NewAccessKey("secret")
	first := key.Sign("GET", 1700000000000, nil, "/device/devices")
	second := key.Sign("GET", 1700000000000, nil, "/device/devices")
	if first != second {
		t.Errorf("same inputs produced different signatures: %q vs %q", first, second)
	}

	// nil body and empty body sign identically
	withEmpty := key.Sign("GET", 1700000000000, []byte{}, "/device/devices")
	if first != withEmpty {
		t.Errorf("nil body signature %q != empty body signature %q", first, withEmpty)
	}
}

func TestAccessKey_Redaction(t *testing.T) {
	key := NewAccessKey("super-secret-value")

	for _, rendered := range []string{
		fmt.Sprintf("%v", key),
		fmt.Sprintf("%s", key),
		fmt.Sprintf("%#v", key),
	} {
		if strings.Contains(rendered, "super-secret-value") {
			t.Errorf("key material leaked through formatting: %q", rendered)
		}
	}
}

func TestCredentials_Header(t *testing.T) {
	creds := Credentials{
		AccessID: "abc123",
		Key:      NewAccessKey("secret"),
	}

	header := creds.Header("GET", 1700000000000, nil, "/device/groups")
	want := "LMv1 abc123:ZjY3NTIwODIzMTFkODFlZThjMDM1OWZmNjIzZGJmYTUyNzY3YTVjMDEyNGRkN2Y0ZTM5MjljZTZmMWVlMjgxZQ==:1700000000000"
	if header != want {
		t.Errorf("Header() = %q, want %q", header, want)
	}
}

func TestCredentials_IsZero(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		expected bool
	}{
		{
			name:     "both set",
			creds:    Credentials{AccessID: "id", Key: NewAccessKey("key")},
			expected: false,
		},
		{
			name:     "missing id",
			creds:    Credentials{Key: NewAccessKey("key")},
			expected: true,
		},
		{
			name:     "missing key",
			creds:    Credentials{AccessID: "id"},
			expected: true,
		},
		{
			name:     "empty",
			creds:    Credentials{},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.IsZero(); got != tt.expected {
				t.Errorf("IsZero() = %v, want %v", got, tt.expected)
			}
		})
	}
}
