package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/cashledger/internal/adapter/http/dto"
	"github.com/iho/cashledger/internal/domain"
	"github.com/iho/cashledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.TransferView, error)
	FindAll(ctx context.Context, limit, offset int) ([]*domain.TransferView, error)
	GetTransfer(ctx context.Context, id int64) (*domain.TransferView, error)
	Delete(ctx context.Context, id int64) error
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	ledger TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledger TransferService) *TransferHandler {
	return &TransferHandler{ledger: ledger}
}

// Create creates a new transfer.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "", "invalid request body")
		return
	}

	input, err := req.ToUseCaseInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, string(domain.KindInvalidAmount), err.Error())
		return
	}

	view, err := h.ledger.Transfer(r.Context(), input)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransferFromDomain(view))
}

// List pages through all transfers in ascending id order.
func (h *TransferHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pageParams(w, r)
	if !ok {
		return
	}

	views, err := h.ledger.FindAll(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(views))
}

// Get retrieves a transfer by ID.
func (h *TransferHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "", "invalid transfer ID")
		return
	}

	view, err := h.ledger.GetTransfer(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferFromDomain(view))
}

// Delete removes a transfer and both of its operations.
func (h *TransferHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusBadRequest, "", "invalid transfer ID")
		return
	}

	if err := h.ledger.Delete(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
