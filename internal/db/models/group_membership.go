package models

import "time"

// MembershipState is the readable form of the tri-state Accepted flag.
type MembershipState string

const (
	// MembershipPending means the membership was neither accepted nor rejected.
	MembershipPending MembershipState = "pending"
	// MembershipAccepted means the membership was approved.
	MembershipAccepted MembershipState = "accepted"
	// MembershipRejected means the membership was explicitly declined.
	MembershipRejected MembershipState = "rejected"
)

// GroupMembership joins one user to one group. A user joins a given group
// at most once. Deleting either side removes the membership (CASCADE).
type GroupMembership struct {
	// ID is the unique identifier for the membership.
	ID uint64 `gorm:"primaryKey"`
	// UserID is the ID of the member.
	UserID uint64 `gorm:"not null;uniqueIndex:index_group_memberships_on_user_id_and_group_id,priority:1;index:index_group_memberships_on_user_id"` //nolint:lll
	// GroupID is the ID of the group joined.
	GroupID uint `gorm:"not null;uniqueIndex:index_group_memberships_on_user_id_and_group_id,priority:2;index:index_group_memberships_on_group_id"` //nolint:lll
	// Accepted is nil until the membership is accepted or rejected.
	Accepted *bool
	// User is the associated user (loaded via foreign key).
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	// Group is the associated group (loaded via foreign key).
	Group Group `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	// CreatedAt is the timestamp when the user joined (managed by GORM).
	CreatedAt time.Time `gorm:"not null"`
	// UpdatedAt is the timestamp of the last state change (managed by GORM).
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the database table name for the GroupMembership model.
func (GroupMembership) TableName() string {
	return "group_memberships"
}

// State reports the membership's acceptance state.
func (m *GroupMembership) State() MembershipState {
	switch {
	case m.Accepted == nil:
		return MembershipPending
	case *m.Accepted:
		return MembershipAccepted
	default:
		return MembershipRejected
	}
}

// All returns every model in migration order.
func All() []any {
	return []any{
		&User{},
		&Group{},
		&GroupMembership{},
	}
}
