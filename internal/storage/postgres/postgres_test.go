package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// newTestStore connects to TEST_DATABASE_URL and empties every table.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	store, err := New(ctx, url)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if _, err := store.pool.Exec(ctx, "TRUNCATE expenses, group_members, groups, users CASCADE"); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	return store
}

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/db":   "pgx5://u:p@localhost:5432/db",
		"postgresql://u:p@localhost:5432/db": "pgx5://u:p@localhost:5432/db",
		"pgx5://localhost/db":                "pgx5://localhost/db",
	}
	for in, want := range tests {
		if got := migrateURL(in); got != want {
			t.Errorf("migrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := &models.User{Email: "alice@example.com", Name: "Alice"}
	bob := &models.User{Email: "bob@example.com", Name: "Bob"}
	for _, u := range []*models.User{alice, bob} {
		if err := store.UpsertUser(ctx, u); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
	}

	t.Run("UpsertUser matches email case-insensitively", func(t *testing.T) {
		again := &models.User{Email: "Alice@Example.com", Name: "Alice L."}
		if err := store.UpsertUser(ctx, again); err != nil {
			t.Fatalf("UpsertUser failed: %v", err)
		}
		if again.ID != alice.ID {
			t.Errorf("ID changed on upsert: got %s, want %s", again.ID, alice.ID)
		}
	})

	group := &models.Group{Name: "Trip", CreatedBy: alice.ID, Members: []string{alice.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("AddGroupMember rejects duplicates", func(t *testing.T) {
		if err := store.AddGroupMember(ctx, group.ID, bob.ID); err != nil {
			t.Fatalf("AddGroupMember failed: %v", err)
		}
		if err := store.AddGroupMember(ctx, group.ID, bob.ID); !errors.Is(err, storage.ErrDuplicate) {
			t.Errorf("Expected ErrDuplicate, got %v", err)
		}
	})

	t.Run("ListGroupsByMember includes members", func(t *testing.T) {
		groups, err := store.ListGroupsByMember(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListGroupsByMember failed: %v", err)
		}
		if len(groups) != 1 || len(groups[0].Members) != 2 {
			t.Errorf("Expected one group with two members, got %v", groups)
		}
	})

	t.Run("Expenses filter by period", func(t *testing.T) {
		e := &models.Expense{
			GroupID: group.ID, AddedBy: bob.ID, Amount: 1250,
			Type: models.ExpenseTypeExpense, Date: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		june, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Year: 2025, Month: 6})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(june) != 1 || june[0].Amount != 1250 {
			t.Errorf("Expected the June expense, got %v", june)
		}

		july, err := store.ListExpenses(ctx, group.ID, storage.ExpenseFilter{Year: 2025, Month: 7})
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(july) != 0 {
			t.Errorf("Expected no July expenses, got %d", len(july))
		}
	})

	t.Run("DeleteGroup cascades", func(t *testing.T) {
		if err := store.DeleteGroup(ctx, group.ID); err != nil {
			t.Fatalf("DeleteGroup failed: %v", err)
		}
		if _, err := store.GetGroup(ctx, group.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
		n, err := store.CountMemberExpenses(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("CountMemberExpenses failed: %v", err)
		}
		if n != 0 {
			t.Errorf("Expected expenses removed with group, got %d", n)
		}
	})
}
