package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/fitness-manager/internal/application"
	"github.com/example/fitness-manager/internal/gym"
	"github.com/example/fitness-manager/internal/persistence"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RevokeSession(ctx context.Context, token string) error
}

type accountService interface {
	Register(ctx context.Context, params application.RegisterParams) (application.RegisterResult, error)
	CreateAccount(ctx context.Context, params application.CreateAccountParams) (persistence.Account, error)
}

// AuthHandler serves registration, login, logout and account issuance.
type AuthHandler struct {
	service   authService
	accounts  accountService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, accounts accountService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, accounts: accounts, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "CreateSession", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode session request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	logger := h.log(r.Context(), "CreateSession", "email", email)

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    email,
		Password: req.Password,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)

	logger.With("account_id", result.Principal.AccountID).InfoContext(r.Context(), "account authenticated")

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt.UTC().Format(time.RFC3339),
		Principal: toPrincipalDTO(result.Principal),
	})
}

// CurrentSession returns the principal of the presented session.
func (h *AuthHandler) CurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, ok := PrincipalFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Principal: toPrincipalDTO(principal)})
}

func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.log(r.Context(), "DeleteCurrentSession", "error_kind", "unauthorized").WarnContext(r.Context(), "missing session token for current session revocation")
		h.responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_REQUIRED",
			Message:   errMissingSessionToken.Error(),
		})
		return
	}

	logger := h.log(r.Context(), "DeleteCurrentSession", "token_present", true)

	if err := h.service.RevokeSession(r.Context(), token); err != nil {
		logger.ErrorContext(r.Context(), "failed to revoke session", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	logger.InfoContext(r.Context(), "session revoked for current principal")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Register creates a user and a student account for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.accounts == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode registration", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register")
	result, err := h.accounts.Register(r.Context(), application.RegisterParams{
		User:     req.User,
		Password: req.Password,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "student registered", "user_id", result.User.UserID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"message":   "registration complete",
		"user_id":   result.User.UserID,
		"data":      result.User,
		"principal": toPrincipalDTO(result.Principal),
	})
}

// CreateAccount lets administrators issue coach, student or admin accounts.
func (h *AuthHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.accounts == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req accountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.log(r.Context(), "CreateAccount", "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode account request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "CreateAccount", "actor_id", principal.AccountID, "role", req.Role)
	account, err := h.accounts.CreateAccount(r.Context(), application.CreateAccountParams{
		Principal: principal,
		Email:     req.Email,
		Password:  req.Password,
		Role:      gym.Role(strings.ToLower(strings.TrimSpace(req.Role))),
		UserID:    req.UserID,
		CoachID:   req.CoachID,
	})
	if err != nil {
		logger.WarnContext(r.Context(), "account creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "account created", "account_id", account.ID)
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, map[string]any{
		"message":    "account created",
		"account_id": account.ID,
		"data":       toAccountDTO(account),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Principal principalDTO `json:"principal"`
}

type sessionResponse struct {
	Principal principalDTO `json:"principal"`
}

type registerRequest struct {
	gym.User
	Password string `json:"password"`
}

type accountRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	UserID   *int64 `json:"user_id"`
	CoachID  *int64 `json:"coach_id"`
}

type principalDTO struct {
	AccountID int64    `json:"account_id"`
	Email     string   `json:"email"`
	Role      gym.Role `json:"role"`
	UserID    *int64   `json:"user_id,omitempty"`
	CoachID   *int64   `json:"coach_id,omitempty"`
}

func toPrincipalDTO(p application.Principal) principalDTO {
	dto := principalDTO{AccountID: p.AccountID, Email: p.Email, Role: p.Role}
	if p.UserID != 0 {
		id := p.UserID
		dto.UserID = &id
	}
	if p.CoachID != 0 {
		id := p.CoachID
		dto.CoachID = &id
	}
	return dto
}

type accountDTO struct {
	AccountID int64    `json:"account_id"`
	Email     string   `json:"email"`
	Role      gym.Role `json:"role"`
	UserID    *int64   `json:"user_id,omitempty"`
	CoachID   *int64   `json:"coach_id,omitempty"`
	Disabled  bool     `json:"disabled"`
}

func toAccountDTO(a persistence.Account) accountDTO {
	return accountDTO{
		AccountID: a.ID,
		Email:     a.Email,
		Role:      a.Role,
		UserID:    a.UserID,
		CoachID:   a.CoachID,
		Disabled:  a.Disabled,
	}
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
	})
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	if cookie, err := r.Cookie("session_token"); err == nil {
		return cookie.Value
	}
	return ""
}
