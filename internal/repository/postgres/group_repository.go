package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
)

type groupRepository struct {
	db *sqlx.DB
}

func NewGroupRepository(db *sqlx.DB) repository.GroupRepository {
	return &groupRepository{db: db}
}

func (r *groupRepository) Create(ctx context.Context, group *domain.Group) error {
	query := `
		INSERT INTO groups (icebreakers)
		VALUES ($1)
		RETURNING id, created_at
	`
	return ext(ctx, r.db).QueryRowxContext(ctx, query, pq.Array(group.Icebreakers)).
		Scan(&group.ID, &group.CreatedAt)
}

func (r *groupRepository) GetByID(ctx context.Context, id int) (*domain.Group, error) {
	var group domain.Group
	query := `SELECT id, icebreakers, created_at FROM groups WHERE id = $1`
	err := ext(ctx, r.db).QueryRowxContext(ctx, query, id).
		Scan(&group.ID, pq.Array(&group.Icebreakers), &group.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) SetIcebreakers(ctx context.Context, groupID int, icebreakers []string) error {
	query := `UPDATE groups SET icebreakers = $1 WHERE id = $2`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, pq.Array(icebreakers), groupID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}

func (r *groupRepository) AddMember(ctx context.Context, groupID, userID int) (*domain.GroupMembership, error) {
	membership := &domain.GroupMembership{
		GroupID: groupID,
		UserID:  userID,
		Status:  domain.MembershipStatusActive,
	}
	query := `
		INSERT INTO group_members (group_id, user_id, status)
		VALUES ($1, $2, $3)
		RETURNING id, joined_at
	`
	err := ext(ctx, r.db).QueryRowxContext(ctx, query, groupID, userID, membership.Status).
		Scan(&membership.ID, &membership.JoinedAt)
	if isUniqueViolation(err) {
		// Partial unique index: at most one active membership per user.
		return nil, domain.ErrAlreadyInGroup
	}
	if err != nil {
		return nil, err
	}
	return membership, nil
}

func (r *groupRepository) GetActiveMembership(ctx context.Context, userID int) (*domain.GroupMembership, error) {
	var membership domain.GroupMembership
	query := `SELECT * FROM group_members WHERE user_id = $1 AND status = 'active'`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &membership, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, err
	}
	return &membership, nil
}

func (r *groupRepository) GetActiveMembershipInGroup(ctx context.Context, userID, groupID int) (*domain.GroupMembership, error) {
	var membership domain.GroupMembership
	query := `SELECT * FROM group_members WHERE user_id = $1 AND group_id = $2 AND status = 'active'`
	err := sqlx.GetContext(ctx, ext(ctx, r.db), &membership, query, userID, groupID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotGroupMember
		}
		return nil, err
	}
	return &membership, nil
}

func (r *groupRepository) ListActiveMembers(ctx context.Context, groupID int) ([]*domain.GroupMembership, error) {
	var memberships []*domain.GroupMembership
	query := `
		SELECT * FROM group_members
		WHERE group_id = $1 AND status = 'active'
		ORDER BY joined_at
	`
	err := sqlx.SelectContext(ctx, ext(ctx, r.db), &memberships, query, groupID)
	return memberships, err
}

func (r *groupRepository) SetMembershipStatus(ctx context.Context, membershipID int, status string) error {
	query := `UPDATE group_members SET status = $1 WHERE id = $2`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, status, membershipID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrGroupNotFound
	}
	return nil
}
