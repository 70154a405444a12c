package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"dirgate/internal/domain"
	"dirgate/pkg/platform/sentinel"
)

// SentinelPassword is the only password the fixture source accepts. Any other
// value is rejected regardless of the username matched.
const SentinelPassword = "12345"

// FixtureSource serves a fixed allow-list of reserved usernames with canned
// identities and bypasses all directory I/O. It exists to exercise the
// success, blocked, disabled and wrong-password paths deterministically; the
// lockout and disabled policy still runs upstream, identical to live mode.
type FixtureSource struct {
	logger *slog.Logger
}

func NewFixtureSource(logger *slog.Logger) *FixtureSource {
	return &FixtureSource{logger: logger}
}

const fixtureDept = "193210-TECHNOLOGY SOLUTIONS MANAGEMENT"

// fixtureUsers maps reserved username tokens to identity builders. benitob is
// reserved but unscripted, so it exercises the not-found path.
var fixtureUsers = map[string]func() *domain.IdentityRecord{
	"elenao": func() *domain.IdentityRecord {
		return fixtureRecord("elenao", "34505", "10001", "Orozco Siliceo, Elena", "Elena", "1001",
			[]string{"BITACORAS_APLICATIVO"})
	},
	"anamaria": func() *domain.IdentityRecord {
		return fixtureRecord("anamaria", "44504", "20002", "Calderon Sanchez, Ana Maria", "Ana Maria", "1002",
			[]string{"BITACORAS_AUDITOR"})
	},
	"sahelig": func() *domain.IdentityRecord {
		return fixtureRecord("sahelig", "34503", "30003", "Gerrero Barrita, Saheli", "Saheli", "1003",
			[]string{"BITACORAS_AUDITOR", "BITACORAS_ADMINISTRADOR", "BITACORAS_APLICATIVO", "MAC_AUDITOR", "SIGEVI_AUDITOR"})
	},
	"mariob": func() *domain.IdentityRecord {
		r := fixtureRecord("mariob", "664506", "60006", "Barrera Ochoa, Mario", "Mario", "1066",
			[]string{"BITACORAS_APLICATIVO"})
		// One above the threshold so the shared policy derives the blocked
		// outcome. The legacy record carried 3 with the blocked status
		// scripted separately, so this payload field deliberately differs.
		r.FailedAttempts = domain.MaxFailedAttempts + 1
		return r
	},
	"bartolob": func() *domain.IdentityRecord {
		r := fixtureRecord("bartolob", "664506", "60006", "Ochoa Ochoa, Bartolo", "Bartolo", "1066",
			[]string{"BITACORAS_APLICATIVO"})
		r.Active = false
		return r
	},
	"benitob": nil,
}

func fixtureRecord(account, initials, controlFlags, commonName, givenName, phone string, groups []string) *domain.IdentityRecord {
	return &domain.IdentityRecord{
		AccountID:           account,
		Initials:            initials,
		AccountControlFlags: controlFlags,
		CommonName:          commonName,
		GivenName:           givenName,
		Title:               "Technical Expert",
		Department:          fixtureDept,
		PhoneExtension:      phone,
		Active:              true,
		PrincipalName:       account + "@corp.example.mx",
		Email:               strings.ReplaceAll(givenName, " ", "") + "@corp.example.mx",
		ApplicationGroups:   append([]string(nil), groups...),
		AllGroups:           append([]string(nil), groups...),
	}
}

// Lookup serves a canned identity on exact username equality. A substring
// hit on a reserved token still claims the username for the fixture path,
// but anything short of an exact match resolves as absent.
func (f *FixtureSource) Lookup(_ context.Context, req LookupRequest) (*domain.IdentityRecord, error) {
	for token, build := range fixtureUsers {
		if !strings.Contains(req.Username, token) {
			continue
		}
		if build == nil || req.Username != token {
			return nil, nil
		}
		f.logger.Debug("fixture identity served", "username", req.Username)
		record := build()
		if req.WithRawDetail {
			record.RawDetail = fmt.Sprintf("dn: CN=%s,OU=Fixtures", record.CommonName)
		}
		return record, nil
	}
	return nil, nil
}

// VerifyPassword accepts only the sentinel value.
func (f *FixtureSource) VerifyPassword(_ context.Context, _, password string) error {
	if password != SentinelPassword {
		return fmt.Errorf("fixture bind: %w", sentinel.ErrBindRejected)
	}
	return nil
}

// AlwaysVerify marks the sentinel rule as unconditional: every canned
// identity requires the sentinel password, even on operations that would
// not otherwise check one.
func (f *FixtureSource) AlwaysVerify() bool { return true }
