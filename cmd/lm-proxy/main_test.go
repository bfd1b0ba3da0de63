package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/monitorkit/lm-api-client/internal/testutil"
	"github.com/monitorkit/lm-api-client/pkg/auth"
	"github.com/monitorkit/lm-api-client/pkg/client"
	"github.com/rs/zerolog"
)

func newProxyClient(t *testing.T, mock *testutil.MockAPI) *client.Client {
	t.Helper()

	cfg := client.DefaultConfig("", auth.Credentials{
		AccessID: "proxy-id",
		Key:      auth.NewAccessKey("proxy-key"),
	})
	cfg.BaseURL = mock.URL()
	cfg.RateLimitWait = 10 * time.Millisecond

	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New() error = %v", err)
	}
	return c
}

func TestHealthEndpoint(t *testing.T) {
	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	healthHandler(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}

	body, _ := io.ReadAll(w.Body)
	if string(body) != "OK" {
		t.Errorf("body = %q, want OK", body)
	}
}

func TestProxyHandler_ForwardsWithSignature(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/device/groups", testutil.NewEnvelopeResponse(`{"id":1}`))

	handler := proxyHandler(newProxyClient(t, mock), zerolog.Nop())

	req := httptest.NewRequest("GET", "/api/device/groups", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), `"total":1`) {
		t.Errorf("body = %q, want forwarded envelope", w.Body)
	}
	if !strings.HasPrefix(mock.LastAuthHeader, "LMv1 proxy-id:") {
		t.Errorf("upstream Authorization = %q, want LMv1 signature attached", mock.LastAuthHeader)
	}
}

func TestProxyHandler_MapsErrorsToStatus(t *testing.T) {
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetResponse("/device/groups", testutil.NewAuthFailureResponse())

	handler := proxyHandler(newProxyClient(t, mock), zerolog.Nop())

	req := httptest.NewRequest("GET", "/api/device/groups", nil)
	w := httptest.NewRecorder()
	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "auth error",
			err:      &client.APIError{Class: client.ErrorClassAuth},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "rate limit error",
			err:      &client.APIError{Class: client.ErrorClassRateLimit},
			expected: http.StatusTooManyRequests,
		},
		{
			name:     "validation error",
			err:      &client.APIError{Class: client.ErrorClassValidation},
			expected: http.StatusBadRequest,
		},
		{
			name:     "transport error",
			err:      &client.APIError{Class: client.ErrorClassTransport},
			expected: http.StatusBadGateway,
		},
		{
			name:     "server error keeps upstream status",
			err:      &client.APIError{Class: client.ErrorClassServer, StatusCode: 503},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "plain error",
			err:      errors.New("boom"),
			expected: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statusFor(tt.err); got != tt.expected {
				t.Errorf("statusFor() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("LM_PROXY_TEST_KEY", "value")

	if got := getEnv("LM_PROXY_TEST_KEY", "fallback"); got != "value" {
		t.Errorf("getEnv() = %q, want value", got)
	}
	if got := getEnv("LM_PROXY_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("getEnv() = %q, want fallback", got)
	}
}
