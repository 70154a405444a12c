package domain

import "time"

// IdentityRecord is the structured view of one directory entry. A record is
// created fresh for each query, owned by the call that produced it, and never
// cached or persisted.
type IdentityRecord struct {
	AccountID           string     `json:"accountId"`
	Initials            string     `json:"initials"`
	AccountControlFlags string     `json:"accountControlFlags"`
	CommonName          string     `json:"commonName"`
	GivenName           string     `json:"givenName"`
	Title               string     `json:"title"`
	Department          string     `json:"department"`
	PhoneExtension      string     `json:"phoneExtension"`
	Active              bool       `json:"active"`
	PrincipalName       string     `json:"principalName"`
	Email               string     `json:"email"`
	FailedAttempts      int        `json:"failedAttempts"`
	LockoutTimestamp    *time.Time `json:"lockoutTimestamp,omitempty"`
	ApplicationGroups   []string   `json:"applicationGroups"`
	AllGroups           []string   `json:"allGroups"`
	RawDetail           string     `json:"rawDetail,omitempty"`
}

// MaxFailedAttempts is the lockout threshold: a record with more failed
// attempts than this is blocked regardless of any password-check result.
const MaxFailedAttempts = 3

// Blocked reports whether the account is locked out by failed attempts.
func (r *IdentityRecord) Blocked() bool {
	return r.FailedAttempts > MaxFailedAttempts
}
