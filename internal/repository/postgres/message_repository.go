package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *domain.Message) error {
	query := `
		INSERT INTO messages (group_id, user_id, message_text)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	return ext(ctx, r.db).QueryRowxContext(ctx, query, message.GroupID, message.UserID, message.MessageText).
		Scan(&message.ID, &message.CreatedAt)
}

func (r *messageRepository) ListByGroup(ctx context.Context, groupID int, since *time.Time, limit int) ([]*domain.Message, error) {
	var messages []*domain.Message

	query := `
		SELECT m.id, m.group_id, m.user_id, m.message_text, m.created_at, u.first_name
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.group_id = $1
	`
	args := []interface{}{groupID}

	if since != nil {
		query += ` AND m.created_at > $2`
		args = append(args, *since)
	}

	// Oldest first, so pollers can feed the tail straight into their view.
	query += fmt.Sprintf(` ORDER BY m.created_at ASC LIMIT $%d`, len(args)+1)
	args = append(args, limit)

	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &messages, query, args...)
	return messages, err
}

func (r *messageRepository) CountByGroup(ctx context.Context, groupID int) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE group_id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &count, query, groupID)
	return count, err
}
