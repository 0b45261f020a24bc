package domain

import "time"

type Message struct {
	ID          int       `json:"id" db:"id"`
	GroupID     int       `json:"group_id" db:"group_id"`
	UserID      int       `json:"user_id" db:"user_id"`
	MessageText string    `json:"message_text" db:"message_text"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// SenderName is populated by the message repository join; it is not a
	// column on the messages table.
	SenderName string `json:"user_first_name" db:"first_name"`
}
