package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const (
	minSearchLength = 3
	searchLimit     = 20
)

// Profile is what the sign-in flow knows about a person.
type Profile struct {
	GoogleID string
	Email    string
	Name     string
	Avatar   string
}

// UserService handles user lookup and token issuance.
type UserService struct {
	store      storage.UserStore
	jwtManager *auth.JWTManager
}

// NewUserService creates a new UserService.
func NewUserService(store storage.UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		store:      store,
		jwtManager: jwtManager,
	}
}

// SignIn records the profile (creating the user on first sight) and issues a
// session token for it.
func (s *UserService) SignIn(ctx context.Context, p Profile) (*models.User, string, error) {
	v := &ValidationError{}
	addr, err := mail.ParseAddress(strings.TrimSpace(p.Email))
	if err != nil {
		v.add("email", "must be a valid email address")
	}
	name := strings.TrimSpace(p.Name)
	if name == "" {
		v.add("name", "is required")
	}
	if err := v.errOrNil(); err != nil {
		return nil, "", err
	}

	user := models.NewUser(strings.ToLower(addr.Address), name, p.Avatar)
	user.GoogleID = p.GoogleID
	if err := s.store.UpsertUser(ctx, user); err != nil {
		return nil, "", fromStore(err, "save user")
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	slog.Info("User signed in", "user_id", user.ID)
	return user, token, nil
}

// Me returns the caller's user record.
func (s *UserService) Me(ctx context.Context, caller auth.Identity) (*models.User, error) {
	user, err := s.store.GetUser(ctx, caller.UserID)
	if err != nil {
		return nil, fromStore(err, "user "+caller.UserID)
	}
	return user, nil
}

// Search finds users by email substring, excluding the caller.
func (s *UserService) Search(ctx context.Context, caller auth.Identity, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if len(query) < minSearchLength {
		v := &ValidationError{}
		v.add("email", fmt.Sprintf("must be at least %d characters", minSearchLength))
		return nil, v
	}

	found, err := s.store.SearchUsersByEmail(ctx, query, searchLimit+1)
	if err != nil {
		return nil, fromStore(err, "search users")
	}

	users := make([]*models.User, 0, len(found))
	for _, u := range found {
		if u.ID != caller.UserID && len(users) < searchLimit {
			users = append(users, u)
		}
	}
	return users, nil
}
