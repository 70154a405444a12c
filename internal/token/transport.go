package token

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"
)

// TransportConfig selects the HTTP transport for token-service calls.
type TransportConfig struct {
	// TrustBundlePath points to a PEM bundle of CA certificates trusted for
	// the token service. Empty means the system pool.
	TrustBundlePath string
	// InsecureSkipVerify disables certificate verification. Explicit opt-in
	// for environments with unverifiable chains; never the default.
	InsecureSkipVerify bool
	// Timeout bounds the whole call, connect included.
	Timeout time.Duration
}

// NewHTTPClient builds the client used for token validation calls. Plain
// HTTP endpoints ignore the TLS settings entirely.
func NewHTTPClient(cfg TransportConfig) (*http.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.InsecureSkipVerify {
		tlsConfig.InsecureSkipVerify = true
	} else if cfg.TrustBundlePath != "" {
		pem, err := os.ReadFile(cfg.TrustBundlePath)
		if err != nil {
			return nil, fmt.Errorf("read trust bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("trust bundle %s contains no usable certificates", cfg.TrustBundlePath)
		}
		tlsConfig.RootCAs = pool
	}

	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: tlsConfig,
			Proxy:           http.ProxyFromEnvironment,
		},
	}, nil
}
