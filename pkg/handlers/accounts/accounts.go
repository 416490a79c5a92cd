package accounts

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/chris/virtual-roulette/pkg/storage"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// AccountsHandler holds the dependencies for account read handlers.
type AccountsHandler struct {
	Accounts storage.AccountStore
	Ledger   storage.LedgerStore
}

// NewAccountsHandler creates a new AccountsHandler.
func NewAccountsHandler(accounts storage.AccountStore, ledger storage.LedgerStore) *AccountsHandler {
	return &AccountsHandler{Accounts: accounts, Ledger: ledger}
}

// GetAccount handles the logic for retrieving an account's balance.
func (h *AccountsHandler) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	account, err := h.Accounts.GetByID(r.Context(), id)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve account: %v", err), http.StatusInternalServerError)
		return
	}
	if account == nil {
		http.Error(w, "Account not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(account); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

// ListBets handles the logic for retrieving a user's bet history,
// paginated, most recent first.
func (h *AccountsHandler) ListBets(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid account id", http.StatusBadRequest)
		return
	}

	limit := queryInt32(r, "limit", defaultPageSize)
	if limit <= 0 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset := queryInt32(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	bets, err := h.Ledger.ListByUser(r.Context(), id, limit, offset)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to retrieve bets: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(bets); err != nil {
		http.Error(w, fmt.Sprintf("Failed to write response: %v", err), http.StatusInternalServerError)
	}
}

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
