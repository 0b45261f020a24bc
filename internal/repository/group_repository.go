package repository

import (
	"context"

	"github.com/nthottathil/bridge-web-app/internal/domain"
)

type GroupRepository interface {
	Create(ctx context.Context, group *domain.Group) error
	GetByID(ctx context.Context, id int) (*domain.Group, error)
	SetIcebreakers(ctx context.Context, groupID int, icebreakers []string) error

	// AddMember creates an active membership. It returns
	// domain.ErrAlreadyInGroup when the user already holds an active
	// membership (backed by a partial unique index).
	AddMember(ctx context.Context, groupID, userID int) (*domain.GroupMembership, error)
	// GetActiveMembership returns the user's active membership, or
	// domain.ErrGroupNotFound when there is none.
	GetActiveMembership(ctx context.Context, userID int) (*domain.GroupMembership, error)
	GetActiveMembershipInGroup(ctx context.Context, userID, groupID int) (*domain.GroupMembership, error)
	ListActiveMembers(ctx context.Context, groupID int) ([]*domain.GroupMembership, error)
	SetMembershipStatus(ctx context.Context, membershipID int, status string) error
}
