package auth

// Request carries one authentication call: the encrypted credential plus the
// request metadata forwarded by the consuming application. The ciphertext is
// ephemeral and never persisted.
type Request struct {
	// Credentials is the hex ciphertext holding "username password".
	Credentials string
	// Token is the opaque bearer token, only used by token-validated flows.
	Token string
	// AppName identifies the consuming system; it also selects the
	// application-group subset on the decoded identity.
	AppName string
	// ConsumerID names the system layer consuming the service.
	ConsumerID string
	// FunctionalID and TransactionID are tracing metadata passed through to
	// the token service.
	FunctionalID  string
	TransactionID string
}

// credentials is the decrypted pair. Username is always non-empty when
// decryption succeeds; the password may be empty.
type credentials struct {
	username string
	password string
}
