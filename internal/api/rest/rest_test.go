package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

// testServer runs the REST API over a temporary SQLite database.
type testServer struct {
	t       *testing.T
	server  *httptest.Server
	users   *service.UserService
	handler *Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("rest-test-secret-0123", time.Hour)
	users := service.NewUserService(store, jwtManager)
	h := NewHandler(
		users,
		service.NewGroupService(store),
		service.NewExpenseService(store),
		service.NewSettlementService(store, nil),
	)
	h.now = func() time.Time { return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC) }

	server := httptest.NewServer(NewRouter(h, jwtManager))
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{t: t, server: server, users: users, handler: h}
}

type session struct {
	userID string
	token  string
}

func (ts *testServer) signIn(email, name string) session {
	ts.t.Helper()
	user, token, err := ts.users.SignIn(context.Background(), service.Profile{Email: email, Name: name})
	if err != nil {
		ts.t.Fatalf("SignIn failed: %v", err)
	}
	return session{userID: user.ID, token: token}
}

type response struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []fieldError    `json:"errors"`
}

// do sends a request and decodes the envelope. token may be empty.
func (ts *testServer) do(method, path, token string, body any) (int, response) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			ts.t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.server.URL+path, &buf)
	if err != nil {
		ts.t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		ts.t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	return resp.StatusCode, out
}

func decodeData[T any](t *testing.T, r response) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(r.Data, &v); err != nil {
		t.Fatalf("decode data: %v (%s)", err, r.Data)
	}
	return v
}

// setupTrip creates Alice's group with Bob and Carol in it.
func (ts *testServer) setupTrip() (alice, bob, carol session, groupID string) {
	ts.t.Helper()
	alice = ts.signIn("alice@example.com", "Alice")
	bob = ts.signIn("bob@example.com", "Bob")
	carol = ts.signIn("carol@example.com", "Carol")

	status, resp := ts.do(http.MethodPost, "/groups", alice.token, map[string]string{"name": "Trip"})
	if status != http.StatusCreated {
		ts.t.Fatalf("create group status = %d: %s", status, resp.Message)
	}
	groupID = decodeData[struct {
		Group groupJSON `json:"group"`
	}](ts.t, resp).Group.ID

	for _, email := range []string{"bob@example.com", "carol@example.com"} {
		status, resp := ts.do(http.MethodPost, "/groups/"+groupID+"/members", alice.token, map[string]string{"email": email})
		if status != http.StatusOK {
			ts.t.Fatalf("add member status = %d: %s", status, resp.Message)
		}
	}
	return alice, bob, carol, groupID
}
