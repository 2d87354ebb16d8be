package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

const maxGroupNameLength = 100

// GroupService manages groups and their membership.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

func validateGroupName(name string) (string, error) {
	name = strings.TrimSpace(name)
	v := &ValidationError{}
	switch {
	case name == "":
		v.add("name", "is required")
	case utf8.RuneCountInString(name) > maxGroupNameLength:
		v.add("name", fmt.Sprintf("must be at most %d characters", maxGroupNameLength))
	}
	return name, v.errOrNil()
}

// Create makes a new group with the caller as creator and first member.
func (s *GroupService) Create(ctx context.Context, caller auth.Identity, name string) (*GroupView, error) {
	name, err := validateGroupName(name)
	if err != nil {
		return nil, err
	}

	group := &models.Group{
		Name:      name,
		CreatedBy: caller.UserID,
		Members:   []string{caller.UserID},
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, fromStore(err, "create group")
	}

	slog.Info("Group created", "group_id", group.ID, "user_id", caller.UserID)
	return groupView(ctx, s.store, group)
}

// List returns the groups the caller belongs to, newest first.
func (s *GroupService) List(ctx context.Context, caller auth.Identity) ([]*GroupView, error) {
	groups, err := s.store.ListGroupsByMember(ctx, caller.UserID)
	if err != nil {
		return nil, fromStore(err, "list groups")
	}

	views := make([]*GroupView, 0, len(groups))
	for _, g := range groups {
		view, err := groupView(ctx, s.store, g)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

// Get returns one group. Only members may read it.
func (s *GroupService) Get(ctx context.Context, caller auth.Identity, groupID string) (*GroupView, error) {
	group, err := memberGroup(ctx, s.store, caller, groupID)
	if err != nil {
		return nil, err
	}
	return groupView(ctx, s.store, group)
}

// Rename changes the group name. Only the creator may rename.
func (s *GroupService) Rename(ctx context.Context, caller auth.Identity, groupID, name string) (*GroupView, error) {
	name, err := validateGroupName(name)
	if err != nil {
		return nil, err
	}
	group, err := s.creatorGroup(ctx, caller, groupID, "rename")
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameGroup(ctx, groupID, name); err != nil {
		return nil, fromStore(err, "rename group")
	}
	group.Name = name

	slog.Info("Group renamed", "group_id", groupID)
	return groupView(ctx, s.store, group)
}

// Delete removes the group and its expenses. Only the creator may delete.
func (s *GroupService) Delete(ctx context.Context, caller auth.Identity, groupID string) error {
	if _, err := s.creatorGroup(ctx, caller, groupID, "delete"); err != nil {
		return err
	}
	if err := s.store.DeleteGroup(ctx, groupID); err != nil {
		return fromStore(err, "delete group")
	}

	slog.Info("Group deleted", "group_id", groupID, "user_id", caller.UserID)
	return nil
}

// AddMember adds the user registered under email. Any member may add.
func (s *GroupService) AddMember(ctx context.Context, caller auth.Identity, groupID, email string) (*GroupView, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		v := &ValidationError{}
		v.add("email", "is required")
		return nil, v
	}

	group, err := memberGroup(ctx, s.store, caller, groupID)
	if err != nil {
		return nil, err
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fromStore(err, "user "+email)
	}
	if group.HasMember(user.ID) {
		return nil, fmt.Errorf("user %s already in group %s: %w", user.ID, groupID, ErrConflict)
	}

	if err := s.store.AddGroupMember(ctx, groupID, user.ID); err != nil {
		return nil, fromStore(err, "add member")
	}
	group.Members = append(group.Members, user.ID)

	slog.Info("Member added", "group_id", groupID, "member_id", user.ID)
	return groupView(ctx, s.store, group)
}

// RemoveMember takes userID out of the group. The creator may remove anyone
// but themselves; other members may only remove themselves. A member with
// ledger entries in the group cannot be removed, since their entries would
// no longer balance.
func (s *GroupService) RemoveMember(ctx context.Context, caller auth.Identity, groupID, userID string) (*GroupView, error) {
	group, err := memberGroup(ctx, s.store, caller, groupID)
	if err != nil {
		return nil, err
	}
	if caller.UserID != group.CreatedBy && caller.UserID != userID {
		return nil, fmt.Errorf("only the creator can remove other members: %w", ErrForbidden)
	}
	if userID == group.CreatedBy {
		return nil, fmt.Errorf("the creator cannot leave group %s: %w", groupID, ErrConflict)
	}
	if !group.HasMember(userID) {
		return nil, fmt.Errorf("user %s in group %s: %w", userID, groupID, ErrNotFound)
	}

	n, err := s.store.CountMemberExpenses(ctx, groupID, userID)
	if err != nil {
		return nil, fromStore(err, "count member expenses")
	}
	if n > 0 {
		return nil, fmt.Errorf("user %s has %d entries in group %s: %w", userID, n, groupID, ErrConflict)
	}

	if err := s.store.RemoveGroupMember(ctx, groupID, userID); err != nil {
		return nil, fromStore(err, "remove member")
	}
	members := group.Members[:0]
	for _, id := range group.Members {
		if id != userID {
			members = append(members, id)
		}
	}
	group.Members = members

	slog.Info("Member removed", "group_id", groupID, "member_id", userID)
	return groupView(ctx, s.store, group)
}

func (s *GroupService) creatorGroup(ctx context.Context, caller auth.Identity, groupID, action string) (*models.Group, error) {
	group, err := memberGroup(ctx, s.store, caller, groupID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != caller.UserID {
		return nil, fmt.Errorf("only the creator can %s group %s: %w", action, groupID, ErrForbidden)
	}
	return group, nil
}
