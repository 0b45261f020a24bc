package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
)

type matchRequestRepository struct {
	db *sqlx.DB
}

func NewMatchRequestRepository(db *sqlx.DB) repository.MatchRequestRepository {
	return &matchRequestRepository{db: db}
}

func (r *matchRequestRepository) Create(ctx context.Context, request *domain.MatchRequest) error {
	query := `
		INSERT INTO match_requests (from_user_id, to_user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := ext(ctx, r.db).QueryRowxContext(ctx, query, request.FromUserID, request.ToUserID, request.Status).
		Scan(&request.ID, &request.CreatedAt)
	if isUniqueViolation(err) {
		// The partial unique index on the canonical pair blocks a second
		// pending request in either direction.
		return domain.ErrRequestExists
	}
	return err
}

func (r *matchRequestRepository) GetByID(ctx context.Context, id int) (*domain.MatchRequest, error) {
	var request domain.MatchRequest
	query := `SELECT * FROM match_requests WHERE id = $1`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &request, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *matchRequestRepository) GetPendingBetween(ctx context.Context, userA, userB int) (*domain.MatchRequest, error) {
	// Canonical unordered-pair lookup: a pending a->b request blocks b->a.
	if userA > userB {
		userA, userB = userB, userA
	}

	var request domain.MatchRequest
	query := `
		SELECT * FROM match_requests
		WHERE LEAST(from_user_id, to_user_id) = $1
		  AND GREATEST(from_user_id, to_user_id) = $2
		  AND status = 'pending'
	`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &request, query, userA, userB)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *matchRequestRepository) ListPendingFor(ctx context.Context, toUserID int) ([]*domain.MatchRequest, error) {
	var requests []*domain.MatchRequest
	query := `
		SELECT * FROM match_requests
		WHERE to_user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
	`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &requests, query, toUserID)
	return requests, err
}

func (r *matchRequestRepository) UpdateStatusIfPending(ctx context.Context, id int, status string) error {
	query := `
		UPDATE match_requests
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND status = 'pending'
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Either the request does not exist or it already reached a
		// terminal state; the caller fetched it, so report the conflict.
		return domain.ErrRequestNotPending
	}
	return nil
}
