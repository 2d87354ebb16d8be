// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/settleup/internal/models"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate is returned when a write would violate a uniqueness rule
	// (email already registered, user already a group member).
	ErrDuplicate = errors.New("already exists")
)

// ExpenseFilter narrows ListExpenses to a calendar period.
// Zero values mean "any".
type ExpenseFilter struct {
	Year  int
	Month int
}

// UserStore persists users.
type UserStore interface {
	// UpsertUser inserts the user, or updates name, avatar and Google ID of
	// the user with the same email. user.ID is set to the stored ID.
	UpsertUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by exact (case-insensitive) email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUsersByIDs returns a map of user ID to user. Unknown IDs are omitted.
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)

	// SearchUsersByEmail returns up to limit users whose email contains query.
	SearchUsersByEmail(ctx context.Context, query string, limit int) ([]*models.User, error)
}

// GroupStore persists groups and their membership.
type GroupStore interface {
	// CreateGroup persists a new group and its members.
	// The group.ID, CreatedAt and UpdatedAt fields are populated by the store.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group with its members.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsByMember returns every group userID belongs to, newest first.
	ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error)

	// RenameGroup changes the name of a group.
	RenameGroup(ctx context.Context, groupID, name string) error

	// DeleteGroup removes a group together with its members and expenses.
	DeleteGroup(ctx context.Context, groupID string) error

	// AddGroupMember adds userID to the group. Returns ErrDuplicate if the
	// user is already a member.
	AddGroupMember(ctx context.Context, groupID, userID string) error

	// RemoveGroupMember removes userID from the group.
	RemoveGroupMember(ctx context.Context, groupID, userID string) error
}

// ExpenseStore persists ledger entries.
type ExpenseStore interface {
	// CreateExpense persists a new expense. ID, CreatedAt and UpdatedAt are
	// populated by the store.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense overwrites title, amount, type and date of an expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense by ID.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns a group's expenses, newest first.
	ListExpenses(ctx context.Context, groupID string, filter ExpenseFilter) ([]*models.Expense, error)

	// CountMemberExpenses counts the entries userID has in the group.
	CountMemberExpenses(ctx context.Context, groupID, userID string) (int, error)
}

// Store is the full storage backend. This abstraction allows swapping
// storage backends (SQLite, PostgreSQL) without changing the service layer.
type Store interface {
	UserStore
	GroupStore
	ExpenseStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
