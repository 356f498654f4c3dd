// ABOUTME: HTTP handlers for user registration and transaction CRUD
// ABOUTME: Maps store sentinel errors to 400/404 and never leaks auth detail

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/store"
)

// CreateUserRequest is the JSON request body for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserResponse is the JSON response for user endpoints.
type UserResponse struct {
	Username string `json:"username"`
}

// TokenResponse is the JSON response for GET /api/token.
type TokenResponse struct {
	Token    string `json:"token"`
	Duration int64  `json:"duration"`
}

// TransactionResponse is the JSON representation of a single transaction.
type TransactionResponse struct {
	Description  string `json:"description"`
	Date         string `json:"date"`
	Owner        int64  `json:"owner"`
	Participants string `json:"participants"`
	Price        int64  `json:"price"`
}

// handleUsers handles POST /api/users requests.
func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		s.sendJSONError(w, http.StatusBadRequest, "username and password required")
		return
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("hashing password", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	user := &store.User{Username: req.Username, PasswordHash: hash}
	if err := s.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			s.sendJSONError(w, http.StatusBadRequest, "username already exists")
			return
		}
		s.logger.Error("creating user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", fmt.Sprintf("/api/users/%d", user.ID))
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(UserResponse{Username: user.Username})
}

// handleUserByID handles GET /api/users/{id} requests.
func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/api/users/"), 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.sendJSONError(w, http.StatusNotFound, "not found")
			return
		}
		s.logger.Error("getting user", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(UserResponse{Username: user.Username})
}

// handleToken handles GET /api/token requests. The caller is already
// authenticated; a fresh token is issued for them with the configured TTL.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	principal := auth.MustPrincipalFromContext(r.Context())

	token, err := s.codec.Issue(principal.ID, s.tokenTTL)
	if err != nil {
		s.logger.Error("issuing token", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TokenResponse{
		Token:    token,
		Duration: int64(s.tokenTTL.Seconds()),
	})
}

// handleTransactions handles GET (list) and POST (create) on /transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleListTransactions returns all transactions as a mapping of id to fields.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())
	if !s.policy.Authorize(principal, auth.OpRead, nil) {
		s.sendJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	txns, err := s.store.ListTransactions(r.Context())
	if err != nil {
		s.logger.Error("listing transactions", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	response := make(map[string]TransactionResponse, len(txns))
	for _, t := range txns {
		response[strconv.FormatInt(t.ID, 10)] = transactionResponse(t)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleCreateTransaction creates a transaction owned by the caller.
// An Owner form value is accepted but ignored: the recorded owner is always
// the authenticated principal.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	principal := auth.MustPrincipalFromContext(r.Context())
	if !s.policy.Authorize(principal, auth.OpCreate, nil) {
		s.sendJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	price, err := parsePrice(r.FormValue("Price"))
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid price")
		return
	}

	txn := &store.Transaction{
		Description:  r.FormValue("Description"),
		Date:         r.FormValue("Date"),
		Owner:        principal.ID,
		Participants: r.FormValue("Participants"),
		Price:        price,
	}

	if err := s.store.CreateTransaction(r.Context(), txn); err != nil {
		s.logger.Error("creating transaction", "error", err)
		s.sendJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// handleTransactionByID handles GET, PUT, and DELETE on /transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/transactions/"), 10, 64)
	if err != nil {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTransaction(w, r, id)
	case http.MethodPut:
		s.handleUpdateTransaction(w, r, id)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r, id)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	principal := auth.MustPrincipalFromContext(r.Context())

	txn, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeTransactionError(w, err, "getting transaction")
		return
	}

	if !s.policy.Authorize(principal, auth.OpRead, txn) {
		s.sendJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(transactionResponse(txn))
}

// handleUpdateTransaction fully replaces the mutable fields of a transaction.
// Omitted string fields clear to empty and an omitted Price clears to zero;
// Owner must reference an existing user.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	principal := auth.MustPrincipalFromContext(r.Context())

	txn, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeTransactionError(w, err, "getting transaction")
		return
	}

	if !s.policy.Authorize(principal, auth.OpUpdate, txn) {
		s.sendJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := r.ParseForm(); err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid form data")
		return
	}

	price, err := parsePrice(r.FormValue("Price"))
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, "invalid price")
		return
	}

	owner := int64(0)
	if v := r.FormValue("Owner"); v != "" {
		owner, err = strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.sendJSONError(w, http.StatusBadRequest, "invalid owner")
			return
		}
	}

	fields := store.TransactionFields{
		Description:  r.FormValue("Description"),
		Date:         r.FormValue("Date"),
		Owner:        owner,
		Participants: r.FormValue("Participants"),
		Price:        price,
	}

	if _, err := s.store.UpdateTransaction(r.Context(), id, fields); err != nil {
		if errors.Is(err, store.ErrUnknownOwner) {
			s.sendJSONError(w, http.StatusBadRequest, "owner references unknown user")
			return
		}
		s.writeTransactionError(w, err, "updating transaction")
		return
	}

	w.WriteHeader(http.StatusCreated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request, id int64) {
	principal := auth.MustPrincipalFromContext(r.Context())

	txn, err := s.store.GetTransaction(r.Context(), id)
	if err != nil {
		s.writeTransactionError(w, err, "getting transaction")
		return
	}

	if !s.policy.Authorize(principal, auth.OpDelete, txn) {
		s.sendJSONError(w, http.StatusForbidden, "forbidden")
		return
	}

	if err := s.store.DeleteTransaction(r.Context(), id); err != nil {
		s.writeTransactionError(w, err, "deleting transaction")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeTransactionError maps store errors to HTTP responses. Absent ids are
// always 404, never a crash or a bad-request.
func (s *Server) writeTransactionError(w http.ResponseWriter, err error, op string) {
	if errors.Is(err, store.ErrNotFound) {
		s.sendJSONError(w, http.StatusNotFound, "not found")
		return
	}
	s.logger.Error(op, "error", err)
	s.sendJSONError(w, http.StatusInternalServerError, "internal error")
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// parsePrice parses the Price form value. An empty value clears to zero.
func parsePrice(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

func transactionResponse(t *store.Transaction) TransactionResponse {
	return TransactionResponse{
		Description:  t.Description,
		Date:         t.Date,
		Owner:        t.Owner,
		Participants: t.Participants,
		Price:        t.Price,
	}
}
