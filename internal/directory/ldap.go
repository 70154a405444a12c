package directory

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/go-ldap/ldap/v3"

	"dirgate/internal/domain"
	dErrors "dirgate/pkg/domain-errors"
	"dirgate/pkg/platform/sentinel"
)

// Config carries the connection settings for the live directory.
type Config struct {
	// URL is the directory server, e.g. ldap://dc1.corp:389 or ldaps://...
	URL string
	// SearchBase is the subtree root for account searches.
	SearchBase string
	// BindDN and BindPassword identify the read-only service account.
	BindDN       string
	BindPassword string
	// MailDomain is appended to the candidate username on verification
	// binds, e.g. "@corp.example.mx".
	MailDomain string
	// DialTimeout bounds connection establishment; RequestTimeout bounds
	// each bind and search. Expiry surfaces as a directory-unavailable error.
	DialTimeout    time.Duration
	RequestTimeout time.Duration
}

// LiveDirectory resolves identities against the corporate LDAP directory.
// Connections are acquired per call and closed on every exit path.
type LiveDirectory struct {
	cfg    Config
	logger *slog.Logger
}

func NewLiveDirectory(cfg Config, logger *slog.Logger) *LiveDirectory {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	return &LiveDirectory{cfg: cfg, logger: logger}
}

// Lookup binds with the service account and runs a subtree search by
// account-name equality, decoding the first match.
func (d *LiveDirectory) Lookup(ctx context.Context, req LookupRequest) (*domain.IdentityRecord, error) {
	conn, err := d.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Bind(d.cfg.BindDN, d.cfg.BindPassword); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, domain.MsgDirectoryUnavailable)
	}

	search := ldap.NewSearchRequest(
		d.cfg.SearchBase,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases, 0, 0, false,
		fmt.Sprintf("(%s=%s)", attrAccountName, ldap.EscapeFilter(req.Username)),
		requestedAttributes(),
		nil,
	)
	res, err := conn.Search(search)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, domain.MsgDirectoryUnavailable)
	}
	if len(res.Entries) == 0 {
		return nil, nil
	}

	d.logger.Debug("directory entry found", "username", req.Username)
	return decodeEntry(res.Entries[0], req.AppName, req.WithRawDetail), nil
}

// VerifyPassword performs the candidate-user bind. The candidate principal is
// the username with the configured mail-domain suffix.
func (d *LiveDirectory) VerifyPassword(ctx context.Context, username, password string) error {
	conn, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.Bind(username+d.cfg.MailDomain, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return fmt.Errorf("candidate bind: %w", sentinel.ErrBindRejected)
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, domain.MsgDirectoryUnavailable)
	}
	return nil
}

// connect dials the server and applies the per-request timeout, honoring the
// caller's context deadline when it is shorter.
func (d *LiveDirectory) connect(ctx context.Context) (*ldap.Conn, error) {
	conn, err := ldap.DialURL(d.cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: d.cfg.DialTimeout}))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, domain.MsgDirectoryUnavailable)
	}
	timeout := d.cfg.RequestTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	conn.SetTimeout(timeout)
	return conn, nil
}
