package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/money"
	"github.com/mmynk/settleup/internal/storage/sqlite"
)

const testSecret = "service-test-secret-0123"

// testEnv wires every service to one temporary SQLite database.
type testEnv struct {
	store       *sqlite.SQLiteStore
	users       *UserService
	groups      *GroupService
	expenses    *ExpenseService
	settlements *SettlementService
	jwt         *auth.JWTManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager(testSecret, time.Hour)
	return &testEnv{
		store:       store,
		users:       NewUserService(store, jwtManager),
		groups:      NewGroupService(store),
		expenses:    NewExpenseService(store),
		settlements: NewSettlementService(store, nil),
		jwt:         jwtManager,
	}
}

// signIn creates a user and returns the identity a request would carry.
func (e *testEnv) signIn(t *testing.T, email, name string) auth.Identity {
	t.Helper()
	user, _, err := e.users.SignIn(context.Background(), Profile{Email: email, Name: name})
	if err != nil {
		t.Fatalf("SignIn(%s) failed: %v", email, err)
	}
	return auth.Identity{UserID: user.ID, Email: user.Email}
}

// newGroup creates a group owned by creator and adds the others by email.
func (e *testEnv) newGroup(t *testing.T, creator auth.Identity, name string, others ...auth.Identity) *models.Group {
	t.Helper()
	ctx := context.Background()
	view, err := e.groups.Create(ctx, creator, name)
	if err != nil {
		t.Fatalf("Create group failed: %v", err)
	}
	for _, o := range others {
		view, err = e.groups.AddMember(ctx, creator, view.Group.ID, o.Email)
		if err != nil {
			t.Fatalf("AddMember(%s) failed: %v", o.Email, err)
		}
	}
	return view.Group
}

func (e *testEnv) addExpense(t *testing.T, who auth.Identity, groupID string, amount int64, typ models.ExpenseType, date time.Time) *models.Expense {
	t.Helper()
	view, err := e.expenses.Create(context.Background(), who, ExpenseInput{
		GroupID: groupID,
		Amount:  money.Cents(amount),
		Type:    typ,
		Date:    date,
	})
	if err != nil {
		t.Fatalf("Create expense failed: %v", err)
	}
	return view.Expense
}
