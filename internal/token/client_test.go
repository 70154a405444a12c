package token

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirgate/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewClient(srv.URL, srv.Client(), logger)
}

func TestValidateSuccess(t *testing.T) {
	var gotHeaders http.Header
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		w.Write([]byte(`{"statusCode":200}`))
	})

	out := client.Validate(context.Background(), Request{
		Credentials:   "ABCD",
		Token:         "opaque-token",
		AppName:       "BITACORAS",
		ConsumerID:    "web",
		FunctionalID:  "login",
		TransactionID: "tx-1",
	})

	assert.True(t, out.OK())
	assert.Nil(t, out.Error)
	assert.Equal(t, "opaque-token", gotHeaders.Get("token-auth"))
	assert.Equal(t, "BITACORAS", gotHeaders.Get("app-name"))
	assert.Equal(t, "tx-1", gotHeaders.Get("transaction-id"))
}

func TestValidateRejectionPropagatesStatusAndError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"statusCode":403,"errorMessage":{"statusCode":403,"message":"token expired","detail":"exp claim in the past"}}`))
	})

	out := client.Validate(context.Background(), Request{Token: "stale"})

	assert.Equal(t, http.StatusForbidden, out.StatusCode)
	require.NotNil(t, out.Error)
	assert.Equal(t, "token expired", out.Error.Message)
	assert.Equal(t, "exp claim in the past", out.Error.Detail)
}

func TestValidateRemapsGenericErrorEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"404","error":"Not Found","path":"/token/valid"}`))
	})

	out := client.Validate(context.Background(), Request{Token: "whatever"})

	assert.Equal(t, http.StatusNotFound, out.StatusCode)
	require.NotNil(t, out.Error)
	assert.Equal(t, domain.MsgTokenUnavailable, out.Error.Message)
	assert.Equal(t, "/token/valid - Not Found", out.Error.Detail)
}

func TestValidateEmptyBodyIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	out := client.Validate(context.Background(), Request{})

	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	require.NotNil(t, out.Error)
	assert.Equal(t, domain.MsgTokenUnavailable, out.Error.Message)
}

func TestValidateTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // connection refused from here on

	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	client := NewClient(url, &http.Client{Timeout: time.Second}, logger)

	out := client.Validate(context.Background(), Request{})

	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
	require.NotNil(t, out.Error)
	assert.Equal(t, domain.MsgTokenUnavailable, out.Error.Message)
	assert.NotEmpty(t, out.Error.Detail)
}

func TestValidateUndecodableBodyIsUnavailable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway timeout</html>`))
	})

	out := client.Validate(context.Background(), Request{})

	assert.Equal(t, http.StatusServiceUnavailable, out.StatusCode)
}

func TestNewHTTPClient(t *testing.T) {
	t.Run("default pool", func(t *testing.T) {
		client, err := NewHTTPClient(TransportConfig{Timeout: 2 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, client.Timeout)
	})

	t.Run("insecure opt-in", func(t *testing.T) {
		client, err := NewHTTPClient(TransportConfig{InsecureSkipVerify: true})
		require.NoError(t, err)
		tr, ok := client.Transport.(*http.Transport)
		require.True(t, ok)
		assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
	})

	t.Run("missing trust bundle fails construction", func(t *testing.T) {
		_, err := NewHTTPClient(TransportConfig{TrustBundlePath: "/does/not/exist.pem"})
		require.Error(t, err)
	})
}
