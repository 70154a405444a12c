package token

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"dirgate/internal/domain"
	dErrors "dirgate/pkg/domain-errors"
)

// Client validates tokens over HTTP. One POST per call; the request metadata
// travels in headers, matching the token service's contract.
type Client struct {
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(url string, httpClient *http.Client, logger *slog.Logger) *Client {
	return &Client{url: url, httpClient: httpClient, logger: logger}
}

// tokenResponse is the primary response shape. StatusCode is a pointer so an
// absent field can be told apart from zero and trigger the fallback decode.
type tokenResponse struct {
	StatusCode *int `json:"statusCode"`
	Error      *struct {
		StatusCode int    `json:"statusCode"`
		Message    string `json:"message"`
		Detail     string `json:"detail"`
	} `json:"errorMessage"`
}

// transportError is the generic error envelope some gateways wrap failures
// in. It is tried when the primary shape carries no statusCode.
type transportError struct {
	Status string `json:"status"`
	Error  string `json:"error"`
	Path   string `json:"path"`
}

// Validate posts the credential and metadata headers to the verification
// endpoint. Transport failures, empty bodies and undecodable responses all
// map to a 503 "token service unavailable" outcome.
func (c *Client) Validate(ctx context.Context, req Request) domain.TokenOutcome {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, nil)
	if err != nil {
		return c.unavailable(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("credentials", req.Credentials)
	httpReq.Header.Set("token-auth", req.Token)
	httpReq.Header.Set("app-name", req.AppName)
	httpReq.Header.Set("consumer-id", req.ConsumerID)
	httpReq.Header.Set("functional-id", req.FunctionalID)
	httpReq.Header.Set("transaction-id", req.TransactionID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return c.unavailable(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil || len(body) == 0 {
		return c.unavailable(err)
	}

	var decoded tokenResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return c.unavailable(err)
	}
	if decoded.StatusCode == nil {
		return c.remapTransportError(body)
	}
	if *decoded.StatusCode == http.StatusOK {
		return domain.TokenOutcome{StatusCode: http.StatusOK}
	}

	out := domain.TokenOutcome{StatusCode: *decoded.StatusCode}
	if decoded.Error != nil {
		out.Error = domain.NewErrorInfo(decoded.Error.StatusCode, decoded.Error.Message, decoded.Error.Detail)
	} else {
		out.Error = domain.NewErrorInfo(*decoded.StatusCode, domain.MsgTokenUnavailable, "")
	}
	return out
}

// remapTransportError reinterprets the body as the generic error envelope and
// folds it into the fixed unavailable message with a path+error detail.
func (c *Client) remapTransportError(body []byte) domain.TokenOutcome {
	var fail transportError
	if err := json.Unmarshal(body, &fail); err != nil {
		return c.unavailable(err)
	}
	status, err := strconv.Atoi(fail.Status)
	if err != nil {
		status = http.StatusServiceUnavailable
	}
	c.logger.Warn("token service returned transport error", "status", fail.Status, "path", fail.Path)
	return domain.TokenOutcome{
		StatusCode: status,
		Error:      domain.NewErrorInfo(status, domain.MsgTokenUnavailable, fail.Path+" - "+fail.Error),
	}
}

func (c *Client) unavailable(cause error) domain.TokenOutcome {
	detail := ""
	if cause != nil {
		c.logger.Error("token service call failed", "error", cause)
		detail = dErrors.RootCause(cause).Error()
	}
	return domain.TokenOutcome{
		StatusCode: http.StatusServiceUnavailable,
		Error:      domain.NewErrorInfo(http.StatusServiceUnavailable, domain.MsgTokenUnavailable, detail),
	}
}
