package supplier

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"
)

// Constants shared by the HTTP-backed adapters
const (
	// maxResponseSize limits response bodies to prevent memory exhaustion
	maxResponseSize = 4 * 1024 * 1024 // 4MB max response
	// defaultTimeoutSeconds is the per-request timeout when none is configured
	defaultTimeoutSeconds = 15
)

var (
	ErrConfigMissingBaseURL = errors.New("supplier: config missing base URL")
	ErrConfigMissingAPIKey  = errors.New("supplier: config missing api key")
)

// AdapterConfig holds the connection settings every HTTP-backed adapter
// needs. Values come from the stored Supplier record.
type AdapterConfig struct {
	// BaseURL is the supplier API base URL, without trailing slash
	BaseURL string
	// APIKey is the supplier credential
	APIKey string
	// TimeoutSeconds bounds each request; defaults to defaultTimeoutSeconds
	TimeoutSeconds int
}

// Validate checks the configuration and fills in defaults.
func (c *AdapterConfig) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.APIKey == "" {
		return ErrConfigMissingAPIKey
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

// supplierErrorMessage digs the supplier's own error text out of a failure
// body so callers can fold it into the returned error for diagnostics.
func supplierErrorMessage(body []byte) string {
	var doc map[string]any
	if err := json.Unmarshal(body, &doc); err != nil {
		if len(body) > 200 {
			body = body[:200]
		}
		return strings.TrimSpace(string(body))
	}
	for _, key := range []string{"message", "error", "error_message", "detail"} {
		if v, ok := doc[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// newHTTPClient builds the time-boxed client used for all supplier calls.
// The per-call timeout is the only cancellation mechanism the sweeps rely
// on, so it must always be set.
func newHTTPClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = defaultTimeoutSeconds
	}
	return &http.Client{
		Timeout: time.Duration(timeoutSeconds) * time.Second,
	}
}
