package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okanin/payflow/internal/adapter/http/dto"
	"github.com/okanin/payflow/internal/adapter/http/middleware"
	"github.com/okanin/payflow/internal/domain"
	"github.com/okanin/payflow/internal/infrastructure/metrics"
	"github.com/okanin/payflow/internal/usecase"
)

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC *usecase.TransferUseCase
	directory  usecase.AccountDirectory
	metrics    *metrics.Metrics
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC *usecase.TransferUseCase, directory usecase.AccountDirectory, m *metrics.Metrics) *TransferHandler {
	return &TransferHandler{
		transferUC: transferUC,
		directory:  directory,
		metrics:    m,
	}
}

// Create executes a transfer from the authenticated account to the
// recipient addressed by email.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	sender, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, mapDomainError(err), "invalid transfer request", err.Error())
		return
	}

	recipient, err := h.directory.ResolveEmail(r.Context(), req.RecipientEmail)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to resolve recipient", err.Error())
		return
	}

	var key *string
	if k := idempotencyKeyFrom(r); k != "" {
		key = &k
	}

	out, err := h.transferUC.CreateTransfer(r.Context(), usecase.CreateTransferInput{
		SenderID:       sender.ID,
		RecipientID:    recipient.ID,
		Amount:         req.Amount,
		Description:    req.Description,
		IdempotencyKey: key,
	})
	if err != nil {
		h.metrics.TransferErrors.WithLabelValues(errorType(err)).Inc()
		writeError(w, mapDomainError(err), "failed to create transfer", err.Error())

		return
	}

	h.metrics.TransfersCreated.Inc()

	writeJSON(w, http.StatusCreated, dto.TransferCreatedResponse{
		Transfer:   dto.TransferFromDomain(out.Transfer),
		NewBalance: out.SenderBalance,
	})
}

// Get retrieves a transfer by ID; only its participants may see it.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing transfer ID", "")
		return
	}

	transfer, err := h.transferUC.GetTransferForAccount(r.Context(), id, account.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(transfer))
}

// ListHistory lists the authenticated account's transfers.
func (h *TransferHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	transfers, err := h.transferUC.ListHistory(r.Context(), usecase.ListHistoryInput{
		AccountID: account.ID,
		Limit:     parseIntQuery(r, "limit", 50),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers))
}

// GetBalance returns the authenticated account's balance.
func (h *TransferHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	balance, err := h.transferUC.GetBalance(r.Context(), account.ID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Balance: balance})
}

// GetStats returns aggregate transfer activity for the authenticated
// account.
func (h *TransferHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	account, ok := middleware.AccountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "")
		return
	}

	stats, err := h.transferUC.GetStats(r.Context(), account.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.StatsFromDomain(stats))
}

func idempotencyKeyFrom(r *http.Request) string {
	if key := r.Header.Get(middleware.IdempotencyKeyHeader); key != "" {
		return key
	}

	return r.Header.Get(middleware.IdempotencyKeyHeaderAlt)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, domain.ErrSenderNotFound):
		return "sender_not_found"
	case errors.Is(err, domain.ErrRecipientNotFound):
		return "recipient_not_found"
	case errors.Is(err, domain.ErrSelfTransfer):
		return "self_transfer"
	case errors.Is(err, domain.ErrInvalidAmount), errors.Is(err, domain.ErrAmountTooLarge):
		return "invalid_amount"
	default:
		return "storage"
	}
}
