package auth

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/suite"

	"dirgate/internal/cipher"
	"dirgate/internal/directory"
	"dirgate/internal/domain"
	"dirgate/internal/token"
	"dirgate/pkg/platform/sentinel"
)

const (
	testKey = "0123456789abcdef0123456789abcdef"
	testIV  = "abcdef0123456789"
)

// stubValidator scripts the token service response.
type stubValidator struct {
	outcome domain.TokenOutcome
	called  bool
}

func (v *stubValidator) Validate(_ context.Context, _ token.Request) domain.TokenOutcome {
	v.called = true
	return v.outcome
}

func tokenOK() *stubValidator {
	return &stubValidator{outcome: domain.TokenOutcome{StatusCode: http.StatusOK}}
}

// stubSource scripts lookup results for policy-threshold cases the fixture
// users do not cover.
type stubSource struct {
	record    *domain.IdentityRecord
	lookupErr error
	verifyErr error
	panics    bool
}

func (s *stubSource) Lookup(_ context.Context, _ directory.LookupRequest) (*domain.IdentityRecord, error) {
	if s.panics {
		panic("directory blew up")
	}
	return s.record, s.lookupErr
}

func (s *stubSource) VerifyPassword(_ context.Context, _, _ string) error {
	return s.verifyErr
}

func errBindRejected() error {
	return fmt.Errorf("candidate bind: %w", sentinel.ErrBindRejected)
}

type ServiceSuite struct {
	suite.Suite
	codec  *cipher.Codec
	logger *slog.Logger
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	codec, err := cipher.New(testKey, testIV)
	s.Require().NoError(err)
	s.codec = codec
	s.logger = slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func (s *ServiceSuite) newService(source directory.Source, tokens token.Validator) *Service {
	svc, err := New(s.codec, source, tokens, WithLogger(s.logger))
	s.Require().NoError(err)
	return svc
}

func (s *ServiceSuite) fixtureService(tokens token.Validator) *Service {
	return s.newService(directory.NewFixtureSource(s.logger), tokens)
}

// encrypt builds a valid ciphertext credential for tests.
func (s *ServiceSuite) encrypt(plaintext string) string {
	enc, err := s.codec.Encrypt(plaintext)
	s.Require().NoError(err)
	return enc
}

func (s *ServiceSuite) TestAuthenticateByDirectory() {
	ctx := context.Background()

	s.Run("known user succeeds", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: s.encrypt("elenao 12345"), AppName: "BITACORAS"})
		s.Equal(http.StatusOK, out.StatusCode)
		s.Require().NotNil(out.Identity)
		s.Equal("elenao", out.Identity.AccountID)
		s.Nil(out.Error)
	})

	s.Run("canned source rejects a wrong password even without verification", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: s.encrypt("elenao wrongpw")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgPasswordIncorrect, out.Error.Message)
		s.NotNil(out.Identity)
	})

	s.Run("sources without an unconditional rule skip the password check", func() {
		source := &stubSource{
			record:    &domain.IdentityRecord{AccountID: "live-user", Active: true},
			verifyErr: errBindRejected(),
		}
		svc := s.newService(source, tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: s.encrypt("live-user anything")})
		s.Equal(http.StatusOK, out.StatusCode)
	})

	s.Run("unknown user is forbidden", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: s.encrypt("nobody")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgUserNotFound, out.Error.Message)
	})

	s.Run("disabled user is forbidden", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: s.encrypt("bartolob 12345")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgUserDisabled, out.Error.Message)
	})

	s.Run("malformed ciphertext is an internal error", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByDirectory(ctx, Request{Credentials: "not-hex"})
		s.Equal(http.StatusInternalServerError, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.NotEmpty(out.Error.Detail)
	})
}

func (s *ServiceSuite) TestAuthenticateByUserPassword() {
	ctx := context.Background()

	s.Run("sentinel password succeeds", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByUserPassword(ctx, Request{Credentials: s.encrypt("elenao 12345")})
		s.Equal(http.StatusOK, out.StatusCode)
		s.NotNil(out.Identity)
	})

	s.Run("wrong password is forbidden but keeps the found identity", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByUserPassword(ctx, Request{Credentials: s.encrypt("elenao wrong-pw")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgPasswordIncorrect, out.Error.Message)
		s.Require().NotNil(out.Identity)
		s.Equal("elenao", out.Identity.AccountID)
	})

	s.Run("blocked user stays blocked even with the right password", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByUserPassword(ctx, Request{Credentials: s.encrypt("mariob 12345")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgUserBlocked, out.Error.Message)
		s.NotNil(out.Identity)
	})

	s.Run("exactly three failed attempts still proceeds to password check", func() {
		source := &stubSource{record: &domain.IdentityRecord{
			AccountID:      "edge",
			Active:         true,
			FailedAttempts: domain.MaxFailedAttempts,
		}}
		svc := s.newService(source, tokenOK())
		out := svc.AuthenticateByUserPassword(ctx, Request{Credentials: s.encrypt("edge pw")})
		s.Equal(http.StatusOK, out.StatusCode)
	})

	s.Run("four failed attempts blocks before password check", func() {
		source := &stubSource{record: &domain.IdentityRecord{
			AccountID:      "locked",
			Active:         true,
			FailedAttempts: domain.MaxFailedAttempts + 1,
		}}
		svc := s.newService(source, tokenOK())
		out := svc.AuthenticateByUserPassword(ctx, Request{Credentials: s.encrypt("locked pw")})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgUserBlocked, out.Error.Message)
	})
}

func (s *ServiceSuite) TestAuthenticateByToken() {
	ctx := context.Background()

	s.Run("valid token continues to the directory", func() {
		tokens := tokenOK()
		svc := s.fixtureService(tokens)
		out := svc.AuthenticateByToken(ctx, Request{Credentials: s.encrypt("anamaria 12345"), Token: "tok"})
		s.Equal(http.StatusOK, out.StatusCode)
		s.True(tokens.called)
		s.NotNil(out.Identity)
	})

	s.Run("token rejection propagates status and error untouched", func() {
		rejected := domain.TokenOutcome{
			StatusCode: http.StatusForbidden,
			Error:      domain.NewErrorInfo(http.StatusForbidden, "token expired", "exp in the past"),
		}
		svc := s.fixtureService(&stubValidator{outcome: rejected})
		out := svc.AuthenticateByToken(ctx, Request{Credentials: s.encrypt("anamaria 12345"), Token: "stale"})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal("token expired", out.Error.Message)
		s.Nil(out.Identity)
	})

	s.Run("token service outage propagates 503", func() {
		down := domain.TokenOutcome{
			StatusCode: http.StatusServiceUnavailable,
			Error:      domain.NewErrorInfo(http.StatusServiceUnavailable, domain.MsgTokenUnavailable, "connection refused"),
		}
		svc := s.fixtureService(&stubValidator{outcome: down})
		out := svc.AuthenticateByToken(ctx, Request{Credentials: s.encrypt("anamaria 12345"), Token: "tok"})
		s.Equal(http.StatusServiceUnavailable, out.StatusCode)
	})

	s.Run("valid token still rejects a wrong canned password", func() {
		svc := s.fixtureService(tokenOK())
		out := svc.AuthenticateByToken(ctx, Request{Credentials: s.encrypt("anamaria wrongpw"), Token: "tok"})
		s.Equal(http.StatusForbidden, out.StatusCode)
		s.Require().NotNil(out.Error)
		s.Equal(domain.MsgPasswordIncorrect, out.Error.Message)
	})

	s.Run("decrypt failure skips the token call", func() {
		tokens := tokenOK()
		svc := s.fixtureService(tokens)
		out := svc.AuthenticateByToken(ctx, Request{Credentials: "zz"})
		s.Equal(http.StatusInternalServerError, out.StatusCode)
		s.False(tokens.called)
	})
}

func (s *ServiceSuite) TestFetchFullProfile() {
	ctx := context.Background()

	s.Run("returns raw detail and skips the lockout policy", func() {
		source := &stubSource{record: &domain.IdentityRecord{
			AccountID:      "mariob",
			Active:         true,
			FailedAttempts: domain.MaxFailedAttempts + 1,
			RawDetail:      "dn: CN=Barrera Ochoa\\, Mario",
		}}
		svc := s.newService(source, tokenOK())
		out := svc.FetchFullProfile(ctx, Request{Credentials: s.encrypt("mariob 12345"), Token: "tok"})
		s.Equal(http.StatusOK, out.StatusCode)
		s.Require().NotNil(out.Identity)
		s.NotEmpty(out.Identity.RawDetail)
	})

	s.Run("requires a valid token", func() {
		rejected := domain.TokenOutcome{
			StatusCode: http.StatusForbidden,
			Error:      domain.NewErrorInfo(http.StatusForbidden, "bad token", ""),
		}
		svc := s.fixtureService(&stubValidator{outcome: rejected})
		out := svc.FetchFullProfile(ctx, Request{Credentials: s.encrypt("elenao 12345"), Token: "bad"})
		s.Equal(http.StatusForbidden, out.StatusCode)
	})

	s.Run("absent user is forbidden", func() {
		svc := s.newService(&stubSource{}, tokenOK())
		out := svc.FetchFullProfile(ctx, Request{Credentials: s.encrypt("ghost x"), Token: "tok"})
		s.Equal(http.StatusForbidden, out.StatusCode)
	})
}

func (s *ServiceSuite) TestPanicIsConvertedAtTheBoundary() {
	svc := s.newService(&stubSource{panics: true}, tokenOK())
	out := svc.AuthenticateByDirectory(context.Background(), Request{Credentials: s.encrypt("elenao 12345")})
	s.Equal(http.StatusInternalServerError, out.StatusCode)
	s.Require().NotNil(out.Error)
	s.Equal(domain.MsgInternalError, out.Error.Message)
	s.Contains(out.Error.Detail, "directory blew up")
}

func (s *ServiceSuite) TestCipherOperations() {
	ctx := context.Background()
	svc := s.fixtureService(tokenOK())

	s.Run("encrypt then decrypt round-trips", func() {
		enc := svc.EncryptData(ctx, "alice secret")
		s.Equal(http.StatusOK, enc.StatusCode)
		s.NotEmpty(enc.Data)

		dec := svc.DecryptData(ctx, enc.Data)
		s.Equal(http.StatusOK, dec.StatusCode)
		s.Equal("alice secret", dec.Data)
	})

	s.Run("decode of malformed data reports the format message", func() {
		dec := svc.DecryptData(ctx, "zzzz")
		s.Equal(http.StatusInternalServerError, dec.StatusCode)
		s.Require().NotNil(dec.Error)
		s.Equal(domain.MsgBadCipherFormat, dec.Error.Message)
	})
}
