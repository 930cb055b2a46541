package handler

import (
	"encoding/json"
	"net/http"

	"github.com/okanin/payflow/internal/adapter/http/dto"
	"github.com/okanin/payflow/internal/adapter/http/middleware"
	"github.com/okanin/payflow/internal/infrastructure/auth"
	"github.com/okanin/payflow/internal/infrastructure/metrics"
	"github.com/okanin/payflow/internal/usecase"
)

// AuthHandler handles account registration and login.
type AuthHandler struct {
	accountUC  *usecase.AccountUseCase
	jwtManager *auth.JWTManager
	metrics    *metrics.Metrics
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accountUC *usecase.AccountUseCase, jwtManager *auth.JWTManager, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		accountUC:  accountUC,
		jwtManager: jwtManager,
		metrics:    m,
	}
}

// Register provisions a new account and returns a token for it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register", err.Error())
		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	h.metrics.AccountsCreated.Inc()

	writeJSON(w, http.StatusCreated, dto.TokenResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Login verifies credentials and returns a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.Authenticate(r.Context(), usecase.AuthenticateInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "invalid credentials", "")
		return
	}

	token, err := h.jwtManager.Generate(account)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TokenResponse{
		Token:   token,
		Account: dto.AccountFromDomain(account),
	})
}

// Profile returns the authenticated account with its current balance.
// The token only carries the account ID and email, so the balance is
// read fresh.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	current, err := h.accountUC.GetAccount(r.Context(), account.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(current))
}
