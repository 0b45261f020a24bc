package domain

import "time"

// Match request lifecycle. A request transitions exactly once, from pending
// to accepted or rejected, and is immutable afterwards.
const (
	RequestStatusPending  = "pending"
	RequestStatusAccepted = "accepted"
	RequestStatusRejected = "rejected"
)

type MatchRequest struct {
	ID         int        `json:"id" db:"id"`
	FromUserID int        `json:"from_user_id" db:"from_user_id"`
	ToUserID   int        `json:"to_user_id" db:"to_user_id"`
	Status     string     `json:"status" db:"status"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at" db:"updated_at"`
}

func (r *MatchRequest) IsPending() bool {
	return r.Status == RequestStatusPending
}

func (r *MatchRequest) HasUser(userID int) bool {
	return r.FromUserID == userID || r.ToUserID == userID
}

// Other returns the counterpart of userID on this request.
func (r *MatchRequest) Other(userID int) (int, bool) {
	if r.FromUserID == userID {
		return r.ToUserID, true
	}
	if r.ToUserID == userID {
		return r.FromUserID, true
	}
	return 0, false
}
