package directory

import (
	"context"

	"dirgate/internal/domain"
)

// StaticSource is the "directory validation disabled" bypass: every lookup
// returns one fixed identity and every password verifies. Intended for
// offline and demo operation only.
type StaticSource struct{}

func NewStaticSource() *StaticSource {
	return &StaticSource{}
}

func (s *StaticSource) Lookup(_ context.Context, req LookupRequest) (*domain.IdentityRecord, error) {
	record := &domain.IdentityRecord{
		AccountID:           "usuario01",
		Initials:            "10001",
		AccountControlFlags: "20002",
		CommonName:          "usuario01 demo",
		GivenName:           "usuario01",
		Title:               "Technical Expert",
		Department:          "Demo Area",
		PhoneExtension:      "1530",
		Active:              true,
		PrincipalName:       "usuario01@corp.example.mx",
		Email:               "Usuario01Demo@corp.example.mx",
		ApplicationGroups:   []string{},
		AllGroups:           []string{},
	}
	if req.WithRawDetail {
		record.RawDetail = "dn: CN=usuario01 demo,OU=Demo"
	}
	return record, nil
}

func (s *StaticSource) VerifyPassword(_ context.Context, _, _ string) error {
	return nil
}
