package connectapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/middleware"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/service"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

type testEnv struct {
	store      *sqlite.SQLiteStore
	jwt        *auth.JWTManager
	settlement *connect.Client[GetSettlementsRequest, GetSettlementsResponse]
	monthly    *connect.Client[GetMonthlySummaryRequest, GetMonthlySummaryResponse]
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("connect-test-secret-0123", time.Hour)
	srv := NewServer(service.NewSettlementService(store, nil), service.NewExpenseService(store))
	srv.now = func() time.Time { return time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())
	for path, handler := range srv.Handlers(interceptors) {
		mux.Handle(path, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store: store,
		jwt:   jwtManager,
		settlement: connect.NewClient[GetSettlementsRequest, GetSettlementsResponse](
			http.DefaultClient, server.URL+SettlementServiceGetSettlementsProcedure, WithJSON(),
		),
		monthly: connect.NewClient[GetMonthlySummaryRequest, GetMonthlySummaryResponse](
			http.DefaultClient, server.URL+ExpenseServiceGetMonthlySummaryProcedure, WithJSON(),
		),
	}
}

func (e *testEnv) user(t *testing.T, email string) (*models.User, string) {
	t.Helper()
	user := &models.User{Email: email, Name: email}
	if err := e.store.UpsertUser(context.Background(), user); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	token, err := e.jwt.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	return user, token
}

func authed[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestGetSettlements(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice, aliceToken := env.user(t, "alice@example.com")
	bob, _ := env.user(t, "bob@example.com")
	group := &models.Group{Name: "Trip", CreatedBy: alice.ID, Members: []string{alice.ID, bob.ID}}
	if err := env.store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if err := env.store.CreateExpense(ctx, &models.Expense{
		GroupID: group.ID, AddedBy: bob.ID, Amount: 1001, Type: models.ExpenseTypeExpense,
		Date: time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	resp, err := env.settlement.CallUnary(ctx, authed(&GetSettlementsRequest{GroupID: group.ID}, aliceToken))
	if err != nil {
		t.Fatalf("GetSettlements failed: %v", err)
	}

	var sum int64
	for _, b := range resp.Msg.UserBalances {
		sum += b.BalanceCents
	}
	if sum != 0 {
		t.Errorf("balances sum to %d, want 0", sum)
	}
	if len(resp.Msg.Settlements) != 1 {
		t.Fatalf("Expected 1 transfer, got %d", len(resp.Msg.Settlements))
	}
	got := resp.Msg.Settlements[0]
	if got.From.UserID != alice.ID || got.To.UserID != bob.ID {
		t.Errorf("transfer %s -> %s, want alice -> bob", got.From.UserID, got.To.UserID)
	}
	// 10.01 split two ways: one member carries the extra cent
	if got.AmountCents != 500 && got.AmountCents != 501 {
		t.Errorf("AmountCents = %d, want 500 or 501", got.AmountCents)
	}

	monthly, err := env.monthly.CallUnary(ctx, authed(&GetMonthlySummaryRequest{GroupID: group.ID}, aliceToken))
	if err != nil {
		t.Fatalf("GetMonthlySummary failed: %v", err)
	}
	if monthly.Msg.Period != (Period{Month: 3, Year: 2025}) || monthly.Msg.Summary.TotalExpenseCents != 1001 {
		t.Errorf("monthly = %+v", monthly.Msg)
	}
}

func TestErrorCodes(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	alice, aliceToken := env.user(t, "alice@example.com")
	_, malloryToken := env.user(t, "mallory@example.com")
	group := &models.Group{Name: "Private", CreatedBy: alice.ID, Members: []string{alice.ID}}
	if err := env.store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	tests := []struct {
		name string
		req  *connect.Request[GetSettlementsRequest]
		want connect.Code
	}{
		{name: "no token", req: connect.NewRequest(&GetSettlementsRequest{GroupID: group.ID}), want: connect.CodeUnauthenticated},
		{name: "outsider", req: authed(&GetSettlementsRequest{GroupID: group.ID}, malloryToken), want: connect.CodePermissionDenied},
		{name: "missing group", req: authed(&GetSettlementsRequest{GroupID: "nope"}, aliceToken), want: connect.CodeNotFound},
		{name: "bad month", req: authed(&GetSettlementsRequest{GroupID: group.ID, Month: 14}, aliceToken), want: connect.CodeInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.settlement.CallUnary(ctx, tt.req)
			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				t.Fatalf("Expected connect error, got %v", err)
			}
			if connectErr.Code() != tt.want {
				t.Errorf("code = %v, want %v", connectErr.Code(), tt.want)
			}
		})
	}
}
