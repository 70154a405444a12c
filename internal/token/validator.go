// Package token holds the collaborator boundary to the external
// token-verification service. The orchestrator consumes only the Validator
// interface; the HTTP client normalizes every success and failure shape into
// a TokenOutcome so no transport detail leaks upstream.
package token

import (
	"context"

	"dirgate/internal/domain"
)

// Request carries the credential ciphertext, the opaque token and the request
// metadata forwarded to the token service.
type Request struct {
	Credentials   string
	Token         string
	AppName       string
	ConsumerID    string
	FunctionalID  string
	TransactionID string
}

// Validator verifies a token against the external service. Implementations
// never return an error; every failure is folded into the outcome.
type Validator interface {
	Validate(ctx context.Context, req Request) domain.TokenOutcome
}
