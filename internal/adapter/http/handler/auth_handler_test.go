package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/okanin/payflow/internal/adapter/http/dto"
	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/infrastructure/auth"
	"github.com/okanin/payflow/internal/usecase"
	"github.com/okanin/payflow/internal/usecase/mocks"
)

func newAuthHandler() (*AuthHandler, *auth.JWTManager) {
	accRepo := mocks.NewMockAccountRepository()
	accountUC := usecase.NewAccountUseCase(accRepo, mocks.NewMockIDGenerator(), decimal.NewFromInt(1000))
	jwtManager := auth.NewJWTManager("test-secret", time.Minute)

	return NewAuthHandler(accountUC, jwtManager, testMetrics), jwtManager
}

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	handler, jwtManager := newAuthHandler()

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})

	rec := httptest.NewRecorder()
	handler.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body)))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var registered dto.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	claims, err := jwtManager.Verify(registered.Token)
	if err != nil {
		t.Fatalf("expected a valid token, got %v", err)
	}

	if claims.Email != "alice@example.com" {
		t.Fatalf("expected token for alice, got %s", claims.Email)
	}

	if registered.Account == nil || !registered.Account.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatal("expected account with initial balance in the response")
	}

	loginBody, _ := json.Marshal(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "long enough password",
	})

	loginRec := httptest.NewRecorder()
	handler.Login(loginRec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody)))

	if loginRec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", loginRec.Code, loginRec.Body.String())
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	handler, _ := newAuthHandler()

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})

	regRec := httptest.NewRecorder()
	handler.Register(regRec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body)))

	var registered dto.TokenResponse
	if err := json.Unmarshal(regRec.Body.Bytes(), &registered); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	rec := httptest.NewRecorder()
	req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), &domain.Account{ID: registered.Account.ID})
	handler.Profile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var profile dto.AccountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if profile.Email != "alice@example.com" {
		t.Fatalf("expected alice's profile, got %s", profile.Email)
	}

	if !profile.Balance.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected balance 1000, got %s", profile.Balance)
	}
}

func TestAuthHandler_ProfileUnauthenticated(t *testing.T) {
	handler, _ := newAuthHandler()

	rec := httptest.NewRecorder()
	handler.Profile(rec, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_ProfileUnknownAccount(t *testing.T) {
	handler, _ := newAuthHandler()

	rec := httptest.NewRecorder()
	req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/me", nil), &domain.Account{ID: "acc-gone"})
	handler.Profile(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAuthHandler_LoginBadPassword(t *testing.T) {
	handler, _ := newAuthHandler()

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})
	handler.Register(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body)))

	loginBody, _ := json.Marshal(dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "wrong password!",
	})

	rec := httptest.NewRecorder()
	handler.Login(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(loginBody)))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_RegisterDuplicateEmail(t *testing.T) {
	handler, _ := newAuthHandler()

	body, _ := json.Marshal(dto.RegisterRequest{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "long enough password",
	})
	handler.Register(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body)))

	rec := httptest.NewRecorder()
	handler.Register(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body)))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}
