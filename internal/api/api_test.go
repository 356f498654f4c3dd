// ABOUTME: End-to-end tests for the HTTP API using a real SQLite store
// ABOUTME: Covers registration, both auth paths, and transaction CRUD without mocking

package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splitledger/splitledger/internal/auth"
	"github.com/splitledger/splitledger/internal/config"
	"github.com/splitledger/splitledger/internal/store"
)

func newTestServer(t *testing.T) (*Server, *store.SQLiteStore) {
	t.Helper()

	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := &config.Config{
		Server:   config.ServerConfig{HTTPAddr: "localhost:0"},
		Database: config.DatabaseConfig{Path: ":memory:"},
		Auth: config.AuthConfig{
			Secret:   "test-signing-secret",
			TokenTTL: 600 * time.Second,
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, s, logger), s
}

// registerUser creates a user through the API and returns the response.
func registerUser(t *testing.T, srv *Server, username, password string) *httptest.ResponseRecorder {
	t.Helper()
	body := strings.NewReader(`{"username":"` + username + `","password":"` + password + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users", body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func postForm(t *testing.T, srv *Server, target, username, password string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(username, password)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestCreateUser(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := registerUser(t, srv, "alice", "s3cret")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/users/1", rec.Header().Get("Location"))

	var resp UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestCreateUser_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "missing password", body: `{"username":"alice"}`},
		{name: "missing username", body: `{"password":"s3cret"}`},
		{name: "empty body", body: `{}`},
		{name: "invalid json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	srv, _ := newTestServer(t)

	require.Equal(t, http.StatusCreated, registerUser(t, srv, "alice", "s3cret").Code)

	// Duplicate fails regardless of password
	assert.Equal(t, http.StatusBadRequest, registerUser(t, srv, "alice", "different").Code)
}

func TestGetUser(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UserResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "alice", resp.Username)
}

func TestGetUser_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)

	// Absent ids are 404, not 400
	for _, target := range []string{"/api/users/999", "/api/users/abc"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code, "GET %s", target)
	}
}

func TestTransactions_RequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	targets := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/transactions"},
		{http.MethodPost, "/transactions"},
		{http.MethodGet, "/transactions/1"},
		{http.MethodPut, "/transactions/1"},
		{http.MethodDelete, "/transactions/1"},
		{http.MethodGet, "/api/token"},
	}

	for _, tt := range targets {
		req := httptest.NewRequest(tt.method, tt.target, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", tt.method, tt.target)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic", "%s %s", tt.method, tt.target)
	}
}

func TestCreateTransaction_OwnerIsCaller(t *testing.T) {
	srv, s := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	// An Owner field in the form is ignored; the caller is recorded
	form := url.Values{
		"Description":  {"Lunch"},
		"Date":         {"2024-01-01"},
		"Participants": {"bob"},
		"Price":        {"20"},
		"Owner":        {"999"},
	}
	rec := postForm(t, srv, "/transactions", "alice", "s3cret", form)
	require.Equal(t, http.StatusCreated, rec.Code)

	txns, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, int64(1), txns[0].Owner, "owner is always the authenticated caller")
	assert.Equal(t, "Lunch", txns[0].Description)
	assert.Equal(t, "2024-01-01", txns[0].Date)
	assert.Equal(t, "bob", txns[0].Participants)
	assert.Equal(t, int64(20), txns[0].Price)
}

func TestCreateTransaction_InvalidPrice(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	form := url.Values{"Description": {"Lunch"}, "Price": {"twenty"}}
	rec := postForm(t, srv, "/transactions", "alice", "s3cret", form)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListTransactions(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	for _, desc := range []string{"Lunch", "Taxi"} {
		form := url.Values{"Description": {desc}, "Date": {"2024-01-01"}, "Price": {"10"}}
		require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "Lunch", resp["1"].Description)
	assert.Equal(t, "Taxi", resp["2"].Description)
}

func TestGetTransaction(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	form := url.Values{"Description": {"Lunch"}, "Date": {"2024-01-01"}, "Participants": {"bob"}, "Price": {"20"}}
	require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)

	req := httptest.NewRequest(http.MethodGet, "/transactions/1", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TransactionResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Lunch", resp.Description)
	assert.Equal(t, int64(1), resp.Owner)
}

func TestGetTransaction_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/transactions/999", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTransaction_FullReplacement(t *testing.T) {
	srv, s := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")
	registerUser(t, srv, "bob", "hunter2")

	form := url.Values{"Description": {"Lunch"}, "Date": {"2024-01-01"}, "Participants": {"bob"}, "Price": {"20"}}
	require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)

	// PUT replaces every field; omitted Participants clears
	update := url.Values{"Description": {"Dinner"}, "Date": {"2024-01-02"}, "Owner": {"2"}, "Price": {"35"}}
	req := httptest.NewRequest(http.MethodPut, "/transactions/1", strings.NewReader(update.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Empty(t, rec.Body.String())

	got, err := s.GetTransaction(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Dinner", got.Description)
	assert.Equal(t, "2024-01-02", got.Date)
	assert.Equal(t, int64(2), got.Owner)
	assert.Equal(t, "", got.Participants)
	assert.Equal(t, int64(35), got.Price)
}

func TestUpdateTransaction_NotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	update := url.Values{"Description": {"Dinner"}, "Owner": {"1"}}
	req := httptest.NewRequest(http.MethodPut, "/transactions/999", strings.NewReader(update.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateTransaction_UnknownOwner(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	form := url.Values{"Description": {"Lunch"}, "Price": {"20"}}
	require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)

	update := url.Values{"Description": {"Dinner"}, "Owner": {"999"}}
	req := httptest.NewRequest(http.MethodPut, "/transactions/1", strings.NewReader(update.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTransaction(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	form := url.Values{"Description": {"Lunch"}, "Price": {"20"}}
	require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)

	req := httptest.NewRequest(http.MethodDelete, "/transactions/1", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	// Deleting the same id again is 404, never a fault
	req = httptest.NewRequest(http.MethodDelete, "/transactions/1", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSharedLedger_NonOwnerMayMutate(t *testing.T) {
	srv, s := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")
	registerUser(t, srv, "bob", "hunter2")

	form := url.Values{"Description": {"Lunch"}, "Price": {"20"}}
	require.Equal(t, http.StatusCreated, postForm(t, srv, "/transactions", "alice", "s3cret", form).Code)

	// bob deletes alice's transaction: the ledger is shared by design
	req := httptest.NewRequest(http.MethodDelete, "/transactions/1", nil)
	req.SetBasicAuth("bob", "hunter2")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	txns, err := s.ListTransactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestTokenEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	req := httptest.NewRequest(http.MethodGet, "/api/token", nil)
	req.SetBasicAuth("alice", "s3cret")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotEmpty(t, resp.Token)
	assert.Equal(t, int64(600), resp.Duration)

	// The token works as a Basic credential with the password slot ignored
	req = httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.SetBasicAuth(resp.Token, "")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTokenEndpoint_ExpiredTokenRejected(t *testing.T) {
	srv, _ := newTestServer(t)
	registerUser(t, srv, "alice", "s3cret")

	expired, err := auth.NewJWTCodec([]byte("test-signing-secret")).Issue(1, -time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.SetBasicAuth(expired, "")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, target := range []string{"/health", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "GET %s", target)
	}
}
