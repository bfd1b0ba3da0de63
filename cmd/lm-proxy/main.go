// Command lm-proxy is a local signing proxy for the vendor API. It attaches
// LMv1 authorization headers to requests forwarded under /api/ so that tools
// without signing support can talk to the API, and exposes health and
// Prometheus metrics endpoints.
package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/monitorkit/lm-api-client/pkg/auth"
	"github.com/monitorkit/lm-api-client/pkg/client"
	"github.com/monitorkit/lm-api-client/pkg/logging"
)

func main() {
	// Configuration from environment
	account := getEnv("LM_ACCOUNT", "")
	accessID := getEnv("LM_ACCESS_ID", "")
	accessKey := getEnv("LM_ACCESS_KEY", "")
	port := getEnv("PORT", "8080")
	logLevel := getEnv("LOG_LEVEL", "info")

	logCfg := logging.DefaultConfig()
	logCfg.Level = logging.LogLevel(logLevel)
	logCfg.FilePath = getEnv("LOG_FILE", "")
	logger, closer, err := logging.Setup(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	creds := auth.Credentials{
		AccessID: accessID,
		Key:      auth.NewAccessKey(accessKey),
	}

	apiClient, err := client.New(client.DefaultConfig(account, creds))
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create API client")
	}

	http.HandleFunc("/health", healthHandler)
	http.Handle("/metrics", promhttp.Handler())
	http.HandleFunc("/api/", proxyHandler(apiClient, logger))

	addr := ":" + port
	logger.Info().
		Str("addr", addr).
		Str("account", account).
		Msg("Starting signing proxy")

	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Fatal().Err(err).Msg("Server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// proxyHandler forwards a local request to the vendor API with LMv1 headers
// attached. Example: GET /api/device/groups -> GET {base}/device/groups.
func proxyHandler(apiClient *client.Client, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/api"):]

		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(r.Body)
			if err != nil {
				http.Error(w, "read request body", http.StatusBadRequest)
				return
			}
		}

		// The raw query is forwarded verbatim so that pre-encoded filter
		// expressions survive unchanged.
		resp, err := apiClient.Do(r.Context(), client.Request{
			Verb:     r.Method,
			Path:     path,
			RawQuery: r.URL.RawQuery,
			Body:     body,
		})
		if err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Proxied request failed")
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write(resp); err != nil {
			logger.Warn().Err(err).Msg("Failed to write response")
		}
	}
}

// statusFor maps client error classes back to HTTP statuses for the local
// caller.
func statusFor(err error) int {
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusBadGateway
	}

	switch apiErr.Class {
	case client.ErrorClassAuth:
		return http.StatusUnauthorized
	case client.ErrorClassRateLimit:
		return http.StatusTooManyRequests
	case client.ErrorClassValidation:
		return http.StatusBadRequest
	case client.ErrorClassTransport:
		return http.StatusBadGateway
	default:
		if apiErr.StatusCode != 0 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
