// Package auth sequences the authentication pipeline: decrypt, optional
// token validation, directory lookup, policy enforcement, respond. Every
// operation returns a terminal AuthOutcome; no failure, panics included,
// crosses this boundary.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	authmetrics "dirgate/internal/auth/metrics"
	"dirgate/internal/cipher"
	"dirgate/internal/directory"
	"dirgate/internal/domain"
	"dirgate/internal/token"
	dErrors "dirgate/pkg/domain-errors"
	"dirgate/pkg/platform/sentinel"
)

// Service is the orchestrator. It owns no mutable state beyond its immutable
// collaborators, so concurrent requests run independently.
type Service struct {
	codec   *cipher.Codec
	source  directory.Source
	tokens  token.Validator
	logger  *slog.Logger
	metrics *authmetrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *authmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(codec *cipher.Codec, source directory.Source, tokens token.Validator, opts ...Option) (*Service, error) {
	if codec == nil {
		return nil, errors.New("cipher codec is required")
	}
	if source == nil {
		return nil, errors.New("identity source is required")
	}
	if tokens == nil {
		return nil, errors.New("token validator is required")
	}

	svc := &Service{
		codec:  codec,
		source: source,
		tokens: tokens,
		logger: slog.Default(),
		tracer: otel.Tracer("dirgate/internal/auth"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// AuthenticateByToken validates the token first; a non-success token outcome
// terminates the pipeline with the token service's status and error. On
// success the identity is resolved without password verification.
func (s *Service) AuthenticateByToken(ctx context.Context, req Request) (out domain.AuthOutcome) {
	defer s.finish("authenticate_by_token", &out)
	ctx, span := s.tracer.Start(ctx, "auth.AuthenticateByToken")
	defer span.End()

	creds, err := s.decrypt(req.Credentials)
	if err != nil {
		return s.internalOutcome(err)
	}

	tokenOut := s.validateToken(ctx, req)
	if !tokenOut.OK() {
		s.logger.Info("token rejected", "status", tokenOut.StatusCode, "transaction_id", req.TransactionID)
		return domain.AuthOutcome{StatusCode: tokenOut.StatusCode, Error: tokenOut.Error}
	}

	return s.resolve(ctx, creds, req, false, false)
}

// AuthenticateByDirectory resolves the identity by username only; the
// password inside the credential is ignored.
func (s *Service) AuthenticateByDirectory(ctx context.Context, req Request) (out domain.AuthOutcome) {
	defer s.finish("authenticate_by_directory", &out)
	ctx, span := s.tracer.Start(ctx, "auth.AuthenticateByDirectory")
	defer span.End()

	creds, err := s.decrypt(req.Credentials)
	if err != nil {
		return s.internalOutcome(err)
	}
	return s.resolve(ctx, creds, req, false, false)
}

// AuthenticateByUserPassword resolves the identity and then verifies the
// candidate's password with a second bind.
func (s *Service) AuthenticateByUserPassword(ctx context.Context, req Request) (out domain.AuthOutcome) {
	defer s.finish("authenticate_by_user_password", &out)
	ctx, span := s.tracer.Start(ctx, "auth.AuthenticateByUserPassword")
	defer span.End()

	creds, err := s.decrypt(req.Credentials)
	if err != nil {
		return s.internalOutcome(err)
	}
	return s.resolve(ctx, creds, req, true, false)
}

// FetchFullProfile requires a valid token and returns the identity with the
// raw attribute detail. The lockout policy does not apply here; the caller
// asked for profile data, not an authentication decision.
func (s *Service) FetchFullProfile(ctx context.Context, req Request) (out domain.AuthOutcome) {
	defer s.finish("fetch_full_profile", &out)
	ctx, span := s.tracer.Start(ctx, "auth.FetchFullProfile")
	defer span.End()

	creds, err := s.decrypt(req.Credentials)
	if err != nil {
		return s.internalOutcome(err)
	}

	tokenOut := s.validateToken(ctx, req)
	if !tokenOut.OK() {
		return domain.AuthOutcome{StatusCode: tokenOut.StatusCode, Error: tokenOut.Error}
	}

	start := time.Now()
	record, err := s.source.Lookup(ctx, directory.LookupRequest{
		Username:      creds.username,
		AppName:       req.AppName,
		WithRawDetail: true,
	})
	s.metrics.ObserveDirectoryLatency(time.Since(start))
	if err != nil {
		return s.internalOutcome(err)
	}
	if record == nil {
		return forbidden(domain.MsgUserNotFound, nil)
	}
	return domain.AuthOutcome{StatusCode: http.StatusOK, Identity: record}
}

// EncryptData encrypts arbitrary text with the configured key and IV.
func (s *Service) EncryptData(ctx context.Context, data string) domain.CipherOutcome {
	_, span := s.tracer.Start(ctx, "auth.EncryptData")
	defer span.End()

	encrypted, err := s.codec.Encrypt(data)
	if err != nil {
		return domain.CipherOutcome{
			StatusCode: http.StatusInternalServerError,
			Error:      domain.NewErrorInfo(http.StatusInternalServerError, domain.MsgInternalError, dErrors.RootCause(err).Error()),
		}
	}
	return domain.CipherOutcome{StatusCode: http.StatusOK, Data: encrypted}
}

// DecryptData is the inverse of EncryptData.
func (s *Service) DecryptData(ctx context.Context, data string) domain.CipherOutcome {
	_, span := s.tracer.Start(ctx, "auth.DecryptData")
	defer span.End()

	decrypted, err := s.codec.Decrypt(data)
	if err != nil {
		return domain.CipherOutcome{
			StatusCode: http.StatusInternalServerError,
			Error:      domain.NewErrorInfo(http.StatusInternalServerError, domain.MsgBadCipherFormat, dErrors.RootCause(err).Error()),
		}
	}
	return domain.CipherOutcome{StatusCode: http.StatusOK, Data: decrypted}
}

// resolve runs directory lookup and policy enforcement shared by every
// authentication variant. The policy is identical across live, fixture and
// static sources.
func (s *Service) resolve(ctx context.Context, creds credentials, req Request, verifyPassword, withDetail bool) domain.AuthOutcome {
	// Sources with an unconditional password rule override any success a
	// username-only operation would otherwise compute.
	if !verifyPassword {
		if p, ok := s.source.(directory.PasswordPolicy); ok {
			verifyPassword = p.AlwaysVerify()
		}
	}

	start := time.Now()
	record, err := s.source.Lookup(ctx, directory.LookupRequest{
		Username:      creds.username,
		AppName:       req.AppName,
		WithRawDetail: withDetail,
	})
	s.metrics.ObserveDirectoryLatency(time.Since(start))
	if err != nil {
		return s.internalOutcome(err)
	}

	if record == nil {
		s.logger.Info("user not found", "username", creds.username)
		return forbidden(domain.MsgUserNotFound, nil)
	}
	if !record.Active {
		s.logger.Info("user disabled", "username", creds.username)
		return forbidden(domain.MsgUserDisabled, nil)
	}
	if record.Blocked() {
		// Blocked wins over any password-check result; the found identity
		// still rides along on the rejection.
		s.logger.Info("user blocked by failed attempts", "username", creds.username, "failed_attempts", record.FailedAttempts)
		return forbidden(domain.MsgUserBlocked, record)
	}

	if verifyPassword {
		if err := s.source.VerifyPassword(ctx, creds.username, creds.password); err != nil {
			if errors.Is(err, sentinel.ErrBindRejected) {
				s.logger.Info("password incorrect", "username", creds.username)
				return forbidden(domain.MsgPasswordIncorrect, record)
			}
			return s.internalOutcome(err)
		}
	}

	return domain.AuthOutcome{StatusCode: http.StatusOK, Identity: record}
}

func (s *Service) decrypt(ciphertext string) (credentials, error) {
	plaintext, err := s.codec.Decrypt(ciphertext)
	if err != nil {
		return credentials{}, err
	}
	username, password, err := cipher.SplitCredentials(plaintext)
	if err != nil {
		return credentials{}, err
	}
	return credentials{username: username, password: password}, nil
}

func (s *Service) validateToken(ctx context.Context, req Request) domain.TokenOutcome {
	start := time.Now()
	out := s.tokens.Validate(ctx, token.Request{
		Credentials:   req.Credentials,
		Token:         req.Token,
		AppName:       req.AppName,
		ConsumerID:    req.ConsumerID,
		FunctionalID:  req.FunctionalID,
		TransactionID: req.TransactionID,
	})
	s.metrics.ObserveTokenLatency(time.Since(start))
	return out
}

// internalOutcome converts any stage failure into the 500 envelope, with the
// domain message up front and the deepest cause as technical detail.
func (s *Service) internalOutcome(err error) domain.AuthOutcome {
	s.logger.Error("authentication pipeline failure", "error", err)
	return domain.AuthOutcome{
		StatusCode: http.StatusInternalServerError,
		Error: domain.NewErrorInfo(
			http.StatusInternalServerError,
			dErrors.MessageOf(err),
			dErrors.RootCause(err).Error(),
		),
	}
}

func forbidden(message string, identity *domain.IdentityRecord) domain.AuthOutcome {
	return domain.AuthOutcome{
		StatusCode: http.StatusForbidden,
		Identity:   identity,
		Error:      domain.NewErrorInfo(http.StatusForbidden, message, ""),
	}
}

// finish recovers panics into the 500 envelope and records the outcome
// metric. It runs on every exit path of every operation.
func (s *Service) finish(operation string, out *domain.AuthOutcome) {
	if r := recover(); r != nil {
		s.logger.Error("panic recovered at orchestrator boundary", "operation", operation, "panic", r)
		*out = domain.AuthOutcome{
			StatusCode: http.StatusInternalServerError,
			Error:      domain.NewErrorInfo(http.StatusInternalServerError, domain.MsgInternalError, fmt.Sprint(r)),
		}
	}
	s.metrics.IncOutcome(operation, strconv.Itoa(out.StatusCode))
}
