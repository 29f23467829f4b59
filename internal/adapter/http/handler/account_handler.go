package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	CashIn(ctx context.Context, input usecase.CashInInput) (*domain.Operation, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Operation, error)
	Balance(ctx context.Context, account string) (decimal.Decimal, error)
	Statement(ctx context.Context, account string, limit, offset int) ([]*domain.Operation, error)
}

// AccountHandler handles per-account money movements.
type AccountHandler struct {
	ledger AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledger AccountService) *AccountHandler {
	return &AccountHandler{ledger: ledger}
}

// CashIn adds money from outside the ledger to an account.
func (h *AccountHandler) CashIn(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	op, err := h.ledger.CashIn(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Withdraw takes money out of an account.
func (h *AccountHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	input, ok := decodeAmount(w, r)
	if !ok {
		return
	}

	op, err := h.ledger.Withdraw(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationFromDomain(op))
}

// Balance returns the derived balance of an account.
func (h *AccountHandler) Balance(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "", "missing account number")
		return
	}

	balance, err := h.ledger.Balance(r.Context(), number)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{Account: number, Balance: balance})
}

// Operations lists the operations of an account.
func (h *AccountHandler) Operations(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "", "missing account number")
		return
	}

	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	ops, err := h.ledger.Statement(r.Context(), number, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.OperationsFromDomain(ops))
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (usecase.CashInInput, bool) {
	number := chi.URLParam(r, "number")
	if number == "" {
		writeError(w, http.StatusBadRequest, "", "missing account number")
		return usecase.CashInInput{}, false
	}

	var req dto.AmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return usecase.CashInInput{}, false
	}

	input, err := req.ToUseCaseInput(number)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(domain.KindInvalidAmount), err.Error())
		return usecase.CashInInput{}, false
	}

	return input, true
}

func pageParams(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit, err := parseIntQuery(r, "limit", usecase.DefaultPageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(domain.KindInvalidPage), "invalid limit")
		return 0, 0, false
	}

	offset, err = parseIntQuery(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, string(domain.KindInvalidPage), "invalid offset")
		return 0, 0, false
	}

	return limit, offset, true
}
