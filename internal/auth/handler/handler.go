package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"dirgate/internal/auth"
	"dirgate/internal/domain"
	"dirgate/internal/platform/middleware"
)

const (
	headerCredentials  = "credentials"
	headerToken        = "token-auth"
	headerAppName      = "app-name"
	headerConsumerID   = "consumer-id"
	headerFunctionalID = "functional-id"
	headerData         = "data"
)

// Service defines the authentication operations the transport exposes.
type Service interface {
	AuthenticateByToken(ctx context.Context, req auth.Request) domain.AuthOutcome
	AuthenticateByDirectory(ctx context.Context, req auth.Request) domain.AuthOutcome
	AuthenticateByUserPassword(ctx context.Context, req auth.Request) domain.AuthOutcome
	FetchFullProfile(ctx context.Context, req auth.Request) domain.AuthOutcome
	EncryptData(ctx context.Context, data string) domain.CipherOutcome
	DecryptData(ctx context.Context, data string) domain.CipherOutcome
}

// Handler handles the security-auth endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a new auth Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:  logger,
		service: service,
	}
}

// Register registers the security-auth routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.TransactionID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(30 * time.Second))
	authRouter.Post("/security-auth/v1/ldap-user", h.handleDirectoryAuth)
	authRouter.Post("/security-auth/v1/ldap-user-pwd", h.handleUserPasswordAuth)
	authRouter.Post("/security-auth/v1/token-ldap", h.handleTokenAuth)
	authRouter.Get("/security-auth/v1/all-data-user-ldap", h.handleFullProfile)
	authRouter.Post("/security-auth/v1/encrypt/encode", h.handleEncode)
	authRouter.Post("/security-auth/v1/encrypt/decode", h.handleDecode)

	r.Mount("/", authRouter)
}

func (h *Handler) handleDirectoryAuth(w http.ResponseWriter, r *http.Request) {
	out := h.service.AuthenticateByDirectory(r.Context(), requestFromHeaders(r))
	h.writeOutcome(w, r, out)
}

func (h *Handler) handleUserPasswordAuth(w http.ResponseWriter, r *http.Request) {
	out := h.service.AuthenticateByUserPassword(r.Context(), requestFromHeaders(r))
	h.writeOutcome(w, r, out)
}

func (h *Handler) handleTokenAuth(w http.ResponseWriter, r *http.Request) {
	out := h.service.AuthenticateByToken(r.Context(), requestFromHeaders(r))
	h.writeOutcome(w, r, out)
}

func (h *Handler) handleFullProfile(w http.ResponseWriter, r *http.Request) {
	out := h.service.FetchFullProfile(r.Context(), requestFromHeaders(r))
	h.writeOutcome(w, r, out)
}

func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	out := h.service.EncryptData(r.Context(), r.Header.Get(headerData))
	h.writeJSON(w, r, out.StatusCode, out)
}

func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	out := h.service.DecryptData(r.Context(), r.Header.Get(headerData))
	h.writeJSON(w, r, out.StatusCode, out)
}

// requestFromHeaders maps the caller's metadata headers onto a service
// request. The transaction id falls back to the one minted by middleware.
func requestFromHeaders(r *http.Request) auth.Request {
	return auth.Request{
		Credentials:   r.Header.Get(headerCredentials),
		Token:         r.Header.Get(headerToken),
		AppName:       r.Header.Get(headerAppName),
		ConsumerID:    r.Header.Get(headerConsumerID),
		FunctionalID:  r.Header.Get(headerFunctionalID),
		TransactionID: middleware.GetTransactionID(r.Context()),
	}
}

func (h *Handler) writeOutcome(w http.ResponseWriter, r *http.Request, out domain.AuthOutcome) {
	h.writeJSON(w, r, out.StatusCode, out)
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response",
			"error", err,
			"transaction_id", middleware.GetTransactionID(r.Context()),
		)
	}
}
