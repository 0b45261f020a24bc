package repository

import (
	"context"
	"time"

	"github.com/nthottathil/bridge-web-app/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	// ListByGroup returns messages oldest first. since, when non-nil,
	// restricts the result to messages created strictly after it.
	ListByGroup(ctx context.Context, groupID int, since *time.Time, limit int) ([]*domain.Message, error)
	CountByGroup(ctx context.Context, groupID int) (int, error)
}
