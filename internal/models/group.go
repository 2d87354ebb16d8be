package models

import "slices"

// Group is a set of users sharing expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Trip to Rome").
	Name string

	// CreatedBy is the user ID of the group's creator. Only the creator may
	// rename or delete the group.
	CreatedBy string

	// Members is the list of user IDs in this group, creator included.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last change to name or membership.
	UpdatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	return slices.Contains(g.Members, userID)
}
