package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ledger/internal/storage"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET or POST")
	}
}

// handleListTransactions returns every ledger entry in store order.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List transactions error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "store unavailable")
		return
	}

	out := make([]TransactionJSON, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateTransaction performs exactly one store write per call.
// It is not idempotent: retried POSTs create duplicate rows.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.WarnContext(r.Context(), "Malformed transaction body", "error", err)
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	t, err := req.toTransaction()
	if err != nil {
		slog.WarnContext(r.Context(), "Transaction rejected", "error", err)
		writeStoreError(w, err)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Transaction create error",
			"error", err,
			"account_id", t.AccountID,
			"amount_cents", t.Amount.Cents)
		writeStoreError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toTransactionJSON(created))
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	accounts, err := s.ledger.ListAccounts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "List accounts error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "store unavailable")
		return
	}

	out := make([]AccountJSON, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleLogin is the mock sign-in: any known email yields an opaque session
// token. No password check, no session data beyond the token itself.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	email := strings.TrimSpace(req.Email)
	if email == "" {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "email is required")
		return
	}

	user, err := s.ledger.LookupUser(r.Context(), email)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusUnauthorized, "unknown_user", "no such user")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Login lookup error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "store unavailable")
		return
	}

	token, err := s.sessions.create(user.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "Session token error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "could not create session")
		return
	}

	slog.InfoContext(r.Context(), "User signed in", "email", user.Email)
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "email": user.Email})
}

// handleSession reports whether a bearer token names a live mock session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use GET")
		return
	}

	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if token == "" {
		writeError(w, http.StatusUnauthorized, "no_session", "missing bearer token")
		return
	}

	email, ok := s.sessions.lookup(token)
	if !ok {
		writeError(w, http.StatusUnauthorized, "no_session", "unknown session token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}
