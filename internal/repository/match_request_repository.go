package repository

import (
	"context"

	"github.com/nthottathil/bridge-web-app/internal/domain"
)

type MatchRequestRepository interface {
	Create(ctx context.Context, request *domain.MatchRequest) error
	GetByID(ctx context.Context, id int) (*domain.MatchRequest, error)
	// GetPendingBetween looks up a pending request for the unordered pair
	// {a, b}, regardless of direction.
	GetPendingBetween(ctx context.Context, userA, userB int) (*domain.MatchRequest, error)
	// ListPendingFor returns pending requests addressed to the given user.
	ListPendingFor(ctx context.Context, toUserID int) ([]*domain.MatchRequest, error)
	// UpdateStatusIfPending transitions the request out of pending. It
	// returns domain.ErrRequestNotPending when the request has already
	// reached a terminal state, so concurrent accept/reject calls race
	// safely: exactly one wins.
	UpdateStatusIfPending(ctx context.Context, id int, status string) error
}
