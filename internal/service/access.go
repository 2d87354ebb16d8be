package service

import (
	"context"
	"fmt"

	"github.com/mmynk/settleup/internal/auth"
	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// memberGroup loads a group and checks that the caller belongs to it.
func memberGroup(ctx context.Context, groups storage.GroupStore, caller auth.Identity, groupID string) (*models.Group, error) {
	group, err := groups.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fromStore(err, "group "+groupID)
	}
	if err := checkMember(group, caller); err != nil {
		return nil, err
	}
	return group, nil
}

func checkMember(group *models.Group, caller auth.Identity) error {
	if !group.HasMember(caller.UserID) {
		return fmt.Errorf("user %s is not a member of group %s: %w", caller.UserID, group.ID, ErrForbidden)
	}
	return nil
}
