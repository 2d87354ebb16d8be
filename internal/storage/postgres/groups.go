package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mmynk/settleup/internal/models"
	"github.com/mmynk/settleup/internal/storage"
)

// CreateGroup persists a new group and its initial members.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if group.CreatedAt == 0 {
		group.CreatedAt = now
	}
	group.UpdatedAt = group.CreatedAt

	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO groups (id, name, created_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)",
			group.ID, group.Name, group.CreatedBy, group.CreatedAt, group.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group: %w", err)
		}

		for _, userID := range group.Members {
			_, err = tx.Exec(ctx,
				"INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)",
				group.ID, userID, now,
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("member %s listed twice: %w", userID, storage.ErrDuplicate)
			}
			if err != nil {
				return fmt.Errorf("failed to insert group member: %w", err)
			}
		}
		return nil
	})
}

// GetGroup retrieves a group by ID, including its members.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.pool.QueryRow(ctx,
		"SELECT id, name, created_by, created_at, updated_at FROM groups WHERE id = $1",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	group.Members, err = s.listGroupMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return group, nil
}

// ListGroupsByMember returns the groups userID belongs to, newest first.
func (s *Store) ListGroupsByMember(ctx context.Context, userID string) ([]*models.Group, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT g.id, g.name, g.created_by, g.created_at, g.updated_at,
		        ARRAY(SELECT user_id FROM group_members WHERE group_id = g.id ORDER BY user_id)
		 FROM groups g
		 JOIN group_members m ON m.group_id = g.id
		 WHERE m.user_id = $1
		 ORDER BY g.created_at DESC, g.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedBy, &group.CreatedAt, &group.UpdatedAt, &group.Members); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}
	return groups, nil
}

// RenameGroup changes a group's name.
func (s *Store) RenameGroup(ctx context.Context, groupID, name string) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE groups SET name = $1, updated_at = $2 WHERE id = $3",
		name, time.Now().Unix(), groupID,
	)
	if err != nil {
		return fmt.Errorf("failed to rename group: %w", err)
	}
	return expectAffected(tag, "group", groupID)
}

// DeleteGroup removes a group; members and expenses go with it.
func (s *Store) DeleteGroup(ctx context.Context, groupID string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM groups WHERE id = $1", groupID)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return expectAffected(tag, "group", groupID)
}

// AddGroupMember adds a user to a group.
func (s *Store) AddGroupMember(ctx context.Context, groupID, userID string) error {
	now := time.Now().Unix()
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO group_members (group_id, user_id, joined_at) VALUES ($1, $2, $3)",
			groupID, userID, now,
		)
		if isUniqueViolation(err) {
			return fmt.Errorf("user %s in group %s: %w", userID, groupID, storage.ErrDuplicate)
		}
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}
		if _, err := tx.Exec(ctx, "UPDATE groups SET updated_at = $1 WHERE id = $2", now, groupID); err != nil {
			return fmt.Errorf("failed to touch group: %w", err)
		}
		return nil
	})
}

// RemoveGroupMember removes a user from a group.
func (s *Store) RemoveGroupMember(ctx context.Context, groupID, userID string) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM group_members WHERE group_id = $1 AND user_id = $2",
			groupID, userID,
		)
		if err != nil {
			return fmt.Errorf("failed to remove group member: %w", err)
		}
		if err := expectAffected(tag, "group member", userID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, "UPDATE groups SET updated_at = $1 WHERE id = $2", time.Now().Unix(), groupID); err != nil {
			return fmt.Errorf("failed to touch group: %w", err)
		}
		return nil
	})
}

// listGroupMembers returns member IDs in ascending order.
func (s *Store) listGroupMembers(ctx context.Context, groupID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY user_id",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to collect group members: %w", err)
	}
	if members == nil {
		members = []string{}
	}
	return members, nil
}
