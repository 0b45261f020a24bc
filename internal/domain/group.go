package domain

import "time"

// Membership status. A membership transitions at most once, active -> left.
const (
	MembershipStatusActive = "active"
	MembershipStatusLeft   = "left"
)

// Group is created lazily on the first mutual match acceptance and is never
// deleted; a group whose members have all left remains as history.
type Group struct {
	ID          int       `json:"id" db:"id"`
	Icebreakers []string  `json:"icebreakers,omitempty" db:"icebreakers"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// GroupMembership links a user to a group. A user holds at most one active
// membership at any time.
type GroupMembership struct {
	ID       int       `json:"id" db:"id"`
	GroupID  int       `json:"group_id" db:"group_id"`
	UserID   int       `json:"user_id" db:"user_id"`
	Status   string    `json:"status" db:"status"`
	JoinedAt time.Time `json:"joined_at" db:"joined_at"`
}

func (m *GroupMembership) IsActive() bool {
	return m.Status == MembershipStatusActive
}
