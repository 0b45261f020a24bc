package group

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
	"go.uber.org/zap"
)

const (
	// Message polling bounds. Clients poll GET /messages with since+limit;
	// the recommended interval is 5 seconds.
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
)

type GroupUseCase struct {
	groupRepo   repository.GroupRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	logger      *zap.Logger
}

func NewGroupUseCase(
	groupRepo repository.GroupRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	logger *zap.Logger,
) *GroupUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GroupUseCase{
		groupRepo:   groupRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		logger:      logger,
	}
}

// MemberResponse is one active member in a group view.
type MemberResponse struct {
	UserID      int       `json:"user_id"`
	FirstName   string    `json:"first_name"`
	Age         int       `json:"age"`
	Profession  string    `json:"profession"`
	Interests   []string  `json:"interests"`
	PrimaryGoal string    `json:"primary_goal"`
	Statement   *string   `json:"statement"`
	JoinedAt    time.Time `json:"joined_at"`
}

// GroupResponse is the full group view.
type GroupResponse struct {
	GroupID      int               `json:"group_id"`
	CreatedAt    time.Time         `json:"created_at"`
	MemberCount  int               `json:"member_count"`
	Members      []*MemberResponse `json:"members"`
	MessageCount int               `json:"message_count"`
	Icebreakers  []string          `json:"icebreakers,omitempty"`
}

// SendMessageInput is the body of POST /api/groups/:group_id/messages.
type SendMessageInput struct {
	MessageText string `json:"message_text" binding:"required,max=2000"`
}

// GetMyGroup returns the caller's active group, or nil when they are not in
// one.
func (uc *GroupUseCase) GetMyGroup(ctx context.Context, userID int) (*GroupResponse, error) {
	membership, err := uc.groupRepo.GetActiveMembership(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return uc.groupInfo(ctx, membership.GroupID)
}

// GetGroup returns a group view. Only active members may see it.
func (uc *GroupUseCase) GetGroup(ctx context.Context, userID, groupID int) (*GroupResponse, error) {
	if err := uc.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return uc.groupInfo(ctx, groupID)
}

// GetMembers returns the active members of a group the caller belongs to.
func (uc *GroupUseCase) GetMembers(ctx context.Context, userID, groupID int) ([]*MemberResponse, error) {
	if err := uc.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}
	return uc.members(ctx, groupID)
}

// Leave marks the caller's membership as left. The group itself is kept as
// history; the user is free to match again.
func (uc *GroupUseCase) Leave(ctx context.Context, userID, groupID int) error {
	membership, err := uc.groupRepo.GetActiveMembershipInGroup(ctx, userID, groupID)
	if err != nil {
		return err
	}
	return uc.groupRepo.SetMembershipStatus(ctx, membership.ID, domain.MembershipStatusLeft)
}

// SendMessage appends a message to the group log.
func (uc *GroupUseCase) SendMessage(ctx context.Context, userID, groupID int, input *SendMessageInput) (*domain.Message, error) {
	if err := uc.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	message := &domain.Message{
		GroupID:     groupID,
		UserID:      userID,
		MessageText: input.MessageText,
	}
	if err := uc.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	message.SenderName = user.FirstName
	return message, nil
}

// GetMessages returns messages oldest first, optionally only those after
// since.
func (uc *GroupUseCase) GetMessages(ctx context.Context, userID, groupID int, since *time.Time, limit int) ([]*domain.Message, error) {
	if err := uc.requireMember(ctx, userID, groupID); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	if limit > MaxMessageLimit {
		limit = MaxMessageLimit
	}

	messages, err := uc.messageRepo.ListByGroup(ctx, groupID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (uc *GroupUseCase) requireMember(ctx context.Context, userID, groupID int) error {
	_, err := uc.groupRepo.GetActiveMembershipInGroup(ctx, userID, groupID)
	return err
}

func (uc *GroupUseCase) groupInfo(ctx context.Context, groupID int) (*GroupResponse, error) {
	group, err := uc.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	members, err := uc.members(ctx, groupID)
	if err != nil {
		return nil, err
	}

	messageCount, err := uc.messageRepo.CountByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return &GroupResponse{
		GroupID:      group.ID,
		CreatedAt:    group.CreatedAt,
		MemberCount:  len(members),
		Members:      members,
		MessageCount: messageCount,
		Icebreakers:  group.Icebreakers,
	}, nil
}

func (uc *GroupUseCase) members(ctx context.Context, groupID int) ([]*MemberResponse, error) {
	memberships, err := uc.groupRepo.ListActiveMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	members := make([]*MemberResponse, 0, len(memberships))
	for _, membership := range memberships {
		user, err := uc.userRepo.GetByID(ctx, membership.UserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}
		members = append(members, &MemberResponse{
			UserID:      user.ID,
			FirstName:   user.FirstName,
			Age:         user.Age,
			Profession:  user.Profession,
			Interests:   user.Interests,
			PrimaryGoal: user.PrimaryGoal,
			Statement:   user.Statement,
			JoinedAt:    membership.JoinedAt,
		})
	}
	return members, nil
}
