package domain

import (
	"net/http"
	"time"
)

// Fixed caller-facing messages. Kept stable for compatibility with systems
// that match on them.
const (
	MsgInternalError        = "service did not respond, contact the system administrator"
	MsgCredentialsInvalid   = "invalid credentials"
	MsgBadCipherFormat      = "data to decrypt is not in the correct format"
	MsgUserNotFound         = "user not found in directory"
	MsgUserDisabled         = "user disabled in directory"
	MsgUserBlocked          = "user blocked by failed attempts"
	MsgPasswordIncorrect    = "incorrect password"
	MsgTokenUnavailable     = "token service unavailable"
	MsgDirectoryUnavailable = "directory service unavailable"
)

// ErrorInfo is the uniform error envelope attached to outcomes.
type ErrorInfo struct {
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
}

// NewErrorInfo builds an envelope stamped with the current time.
func NewErrorInfo(status int, message, detail string) *ErrorInfo {
	return &ErrorInfo{
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
		Message:    message,
		Detail:     detail,
	}
}

// AuthOutcome is the terminal value every authentication operation returns.
// Callers always receive one of these, never an error.
type AuthOutcome struct {
	StatusCode int             `json:"statusCode"`
	Identity   *IdentityRecord `json:"identity,omitempty"`
	Error      *ErrorInfo      `json:"errorMessage,omitempty"`
}

// TokenOutcome is the normalized result of one token-service validation call.
type TokenOutcome struct {
	StatusCode int        `json:"statusCode"`
	Error      *ErrorInfo `json:"errorMessage,omitempty"`
}

// OK reports whether the token service accepted the token.
func (t TokenOutcome) OK() bool { return t.StatusCode == http.StatusOK }

// CipherOutcome is the terminal value of the encode/decode operations.
type CipherOutcome struct {
	StatusCode int        `json:"statusCode"`
	Data       string     `json:"data,omitempty"`
	Error      *ErrorInfo `json:"errorMessage,omitempty"`
}
