// Package directory turns raw directory records into structured identity
// data. The live implementation binds to the corporate LDAP directory; the
// fixture and static implementations are configuration-gated bypasses that
// return scripted data through the same interface, so the policy and
// orchestration logic upstream is identical across all three.
package directory

import (
	"context"

	"dirgate/internal/domain"
)

// LookupRequest carries what a single identity lookup needs.
type LookupRequest struct {
	// Username is the account-name to match (equality filter, subtree scope).
	Username string
	// AppName is the requesting application's token, used to filter the
	// application-group subset out of the full group membership.
	AppName string
	// WithRawDetail requests the raw attribute dump on the decoded record.
	WithRawDetail bool
}

// PasswordPolicy is an optional capability on a Source. A source answering
// AlwaysVerify true gets its VerifyPassword consulted on every outcome that
// would otherwise succeed, even for operations that did not request a
// password check.
type PasswordPolicy interface {
	AlwaysVerify() bool
}

// Source is the pluggable identity source consumed by the orchestrator.
type Source interface {
	// Lookup resolves one username into an IdentityRecord. A missing entry
	// is reported as (nil, nil); errors are reserved for transport failures.
	Lookup(ctx context.Context, req LookupRequest) (*domain.IdentityRecord, error)

	// VerifyPassword checks the candidate's password. It returns
	// sentinel.ErrBindRejected (possibly wrapped) when the credentials are
	// wrong, and a transport error when the check could not be performed.
	VerifyPassword(ctx context.Context, username, password string) error
}
