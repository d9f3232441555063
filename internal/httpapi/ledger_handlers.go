package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pennybook.org/internal/auth"
	"pennybook.org/internal/ledger"
)

type transactionRequest struct {
	Amount   int64  `json:"amount"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

type listTransactionsResponse struct {
	Items []ledger.Transaction `json:"items"`
	AsOf  time.Time            `json:"as_of"`
}

func (a *API) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgNoToken)
		return
	}

	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := a.ledger.Add(r.Context(), userID, req.Amount, req.Type, req.Category)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/transactions/"+tx.ID)
	writeJSON(w, http.StatusCreated, tx)
}

func (a *API) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgNoToken)
		return
	}

	items, err := a.ledger.ListByUser(r.Context(), userID)
	if err != nil {
		handleLedgerError(w, r, err)
		return
	}
	if items == nil {
		items = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, listTransactionsResponse{
		Items: items,
		AsOf:  time.Now().UTC(),
	})
}

func (a *API) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, msgNoToken)
		return
	}

	if err := a.ledger.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		handleLedgerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handleLedgerError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrInvalidType):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "transaction not found")
	default:
		writeError(w, r, http.StatusInternalServerError, "Server error")
	}
}
