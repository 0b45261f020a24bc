package match

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// DefaultLimit caps the candidate list shown to end users.
	DefaultLimit = 3

	// feedCacheTTL bounds staleness on the discovery path. Finder reads
	// tolerate a slightly stale candidate pool; workflow writes do not go
	// through this cache.
	feedCacheTTL = 30 * time.Second
)

// Notifier delivers match emails. Implementations must not block the
// workflow on delivery problems; failures are logged and swallowed here.
type Notifier interface {
	SendMatchRequest(ctx context.Context, toEmail, requesterName string) error
	SendGroupJoined(ctx context.Context, toEmail, memberName string) error
}

// IcebreakerSource suggests conversation starters for a fresh group.
type IcebreakerSource interface {
	Icebreakers(ctx context.Context, interestsA, interestsB []string) ([]string, error)
}

type MatchUseCase struct {
	userRepo    repository.UserRepository
	requestRepo repository.MatchRequestRepository
	groupRepo   repository.GroupRepository
	tx          repository.TxManager
	notifier    Notifier
	icebreakers IcebreakerSource
	cache       *redis.Client
	logger      *zap.Logger
}

func NewMatchUseCase(
	userRepo repository.UserRepository,
	requestRepo repository.MatchRequestRepository,
	groupRepo repository.GroupRepository,
	tx repository.TxManager,
	notifier Notifier,
	icebreakers IcebreakerSource,
	cache *redis.Client,
	logger *zap.Logger,
) *MatchUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MatchUseCase{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		groupRepo:   groupRepo,
		tx:          tx,
		notifier:    notifier,
		icebreakers: icebreakers,
		cache:       cache,
		logger:      logger,
	}
}

// MatchResponse is one ranked candidate.
type MatchResponse struct {
	UserID             int      `json:"user_id"`
	FirstName          string   `json:"first_name"`
	Age                int      `json:"age"`
	Profession         string   `json:"profession"`
	Statement          *string  `json:"statement"`
	Interests          []string `json:"interests"`
	CompatibilityScore int      `json:"compatibility_score"`
	Location           string   `json:"location"`
	PrimaryGoal        string   `json:"primary_goal"`
}

// CreateRequestInput is the body of POST /api/matches/request.
type CreateRequestInput struct {
	ToUserID int `json:"to_user_id" binding:"required"`
}

// IncomingRequestResponse is one pending request addressed to the caller.
type IncomingRequestResponse struct {
	RequestID int            `json:"request_id"`
	FromUser  *MatchResponse `json:"from_user"`
	CreatedAt time.Time      `json:"created_at"`
}

// AcceptResponse reports the group the acceptor ended up in.
type AcceptResponse struct {
	RequestID int `json:"request_id"`
	GroupID   int `json:"group_id"`
}

// FindMatches returns the ranked candidate list for a user. A user holding
// an active membership cannot browse candidates.
func (uc *MatchUseCase) FindMatches(ctx context.Context, userID, limit int) ([]*MatchResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.requireNotInGroup(ctx, userID); err != nil {
		return nil, err
	}

	if matches, ok := uc.cachedMatches(ctx, userID, limit); ok {
		return matches, nil
	}

	candidates, err := uc.userRepo.ListVerified(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}

	matches := make([]*MatchResponse, 0, len(candidates))
	for _, candidate := range candidates {
		eligible, err := uc.isEligible(ctx, user, candidate)
		if err != nil {
			return nil, err
		}
		if !eligible {
			continue
		}

		score := CompatibilityScore(user, candidate)
		if score < MinScore {
			continue
		}

		matches = append(matches, &MatchResponse{
			UserID:             candidate.ID,
			FirstName:          candidate.FirstName,
			Age:                candidate.Age,
			Profession:         candidate.Profession,
			Statement:          candidate.Statement,
			Interests:          candidate.Interests,
			CompatibilityScore: score,
			Location:           candidate.Location,
			PrimaryGoal:        candidate.PrimaryGoal,
		})
	}

	// Highest score first; equal scores order by candidate id so the
	// ranking is deterministic.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CompatibilityScore != matches[j].CompatibilityScore {
			return matches[i].CompatibilityScore > matches[j].CompatibilityScore
		}
		return matches[i].UserID < matches[j].UserID
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	uc.storeMatches(ctx, userID, limit, matches)

	return matches, nil
}

// isEligible applies the candidate-side exclusion rules: active group
// membership, pending request in either direction, and the requester's
// preferences.
func (uc *MatchUseCase) isEligible(ctx context.Context, user, candidate *domain.User) (bool, error) {
	inGroup, err := uc.inActiveGroup(ctx, candidate.ID)
	if err != nil {
		return false, err
	}
	if inGroup {
		return false, nil
	}

	_, err = uc.requestRepo.GetPendingBetween(ctx, user.ID, candidate.ID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrRequestNotFound) {
		return false, err
	}

	return matchesPreferences(user, candidate), nil
}

// matchesPreferences checks the requester's stated preferences against a
// candidate. Gender preference is stored but not applied: the candidate's
// gender is not part of the profile yet.
func matchesPreferences(user, candidate *domain.User) bool {
	min, max := user.AgeRange()
	if candidate.Age < min || candidate.Age > max {
		return false
	}
	return true
}

// CreateRequest opens a pending match request from fromUserID.
func (uc *MatchUseCase) CreateRequest(ctx context.Context, fromUserID int, input *CreateRequestInput) (*domain.MatchRequest, error) {
	requester, err := uc.userRepo.GetByID(ctx, fromUserID)
	if err != nil {
		return nil, err
	}

	if err := uc.requireNotInGroup(ctx, fromUserID); err != nil {
		return nil, err
	}

	target, err := uc.userRepo.GetByID(ctx, input.ToUserID)
	if err != nil {
		return nil, err
	}

	if requester.ID == target.ID {
		return nil, domain.ErrSelfMatch
	}

	targetInGroup, err := uc.inActiveGroup(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if targetInGroup {
		return nil, domain.ErrTargetInGroup
	}

	_, err = uc.requestRepo.GetPendingBetween(ctx, requester.ID, target.ID)
	if err == nil {
		return nil, domain.ErrRequestExists
	}
	if !errors.Is(err, domain.ErrRequestNotFound) {
		return nil, err
	}

	request := &domain.MatchRequest{
		FromUserID: requester.ID,
		ToUserID:   target.ID,
		Status:     domain.RequestStatusPending,
	}
	if err := uc.requestRepo.Create(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create match request: %w", err)
	}

	uc.notifyMatchRequest(ctx, target.Email, requester.FirstName)

	return request, nil
}

// ListIncoming returns pending requests addressed to the user, each scored
// against the sender.
func (uc *MatchUseCase) ListIncoming(ctx context.Context, userID int) ([]*IncomingRequestResponse, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	requests, err := uc.requestRepo.ListPendingFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list match requests: %w", err)
	}

	responses := make([]*IncomingRequestResponse, 0, len(requests))
	for _, request := range requests {
		sender, err := uc.userRepo.GetByID(ctx, request.FromUserID)
		if err != nil {
			if errors.Is(err, domain.ErrUserNotFound) {
				continue
			}
			return nil, err
		}

		responses = append(responses, &IncomingRequestResponse{
			RequestID: request.ID,
			FromUser: &MatchResponse{
				UserID:             sender.ID,
				FirstName:          sender.FirstName,
				Age:                sender.Age,
				Profession:         sender.Profession,
				Statement:          sender.Statement,
				Interests:          sender.Interests,
				CompatibilityScore: CompatibilityScore(user, sender),
				Location:           sender.Location,
				PrimaryGoal:        sender.PrimaryGoal,
			},
			CreatedAt: request.CreatedAt,
		})
	}

	return responses, nil
}

// Accept accepts a pending request addressed to userID. If the requester
// already sits in an active group the acceptor joins it; otherwise a new
// group is created holding both users. The status transition and the
// membership writes commit in one transaction, so a concurrent accept on
// the same request loses with ErrRequestNotPending.
func (uc *MatchUseCase) Accept(ctx context.Context, userID, requestID int) (*AcceptResponse, error) {
	var (
		groupID  int
		newGroup bool
		sender   *domain.User
	)

	err := uc.tx.Do(ctx, func(ctx context.Context) error {
		request, err := uc.requestRepo.GetByID(ctx, requestID)
		if err != nil {
			return err
		}
		if request.ToUserID != userID {
			return domain.ErrRequestNotFound
		}
		if !request.IsPending() {
			return domain.ErrRequestNotPending
		}

		if err := uc.requireNotInGroup(ctx, userID); err != nil {
			return err
		}

		if err := uc.requestRepo.UpdateStatusIfPending(ctx, request.ID, domain.RequestStatusAccepted); err != nil {
			return err
		}

		sender, err = uc.userRepo.GetByID(ctx, request.FromUserID)
		if err != nil {
			return err
		}

		senderMembership, err := uc.groupRepo.GetActiveMembership(ctx, sender.ID)
		switch {
		case err == nil:
			// Requester already has a group; the acceptor joins it.
			groupID = senderMembership.GroupID
			if _, err := uc.groupRepo.AddMember(ctx, groupID, userID); err != nil {
				return err
			}
		case errors.Is(err, domain.ErrGroupNotFound):
			group := &domain.Group{}
			if err := uc.groupRepo.Create(ctx, group); err != nil {
				return fmt.Errorf("failed to create group: %w", err)
			}
			if _, err := uc.groupRepo.AddMember(ctx, group.ID, sender.ID); err != nil {
				return err
			}
			if _, err := uc.groupRepo.AddMember(ctx, group.ID, userID); err != nil {
				return err
			}
			groupID = group.ID
			newGroup = true
		default:
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	acceptor, err := uc.userRepo.GetByID(ctx, userID)
	if err == nil {
		if newGroup {
			uc.enrichGroup(groupID, sender, acceptor)
		} else {
			// Only joins into an existing group notify the requester.
			uc.notifyGroupJoined(ctx, sender.Email, acceptor.FirstName)
		}
	}

	return &AcceptResponse{RequestID: requestID, GroupID: groupID}, nil
}

// Reject rejects a pending request addressed to userID.
func (uc *MatchUseCase) Reject(ctx context.Context, userID, requestID int) error {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ToUserID != userID {
		return domain.ErrRequestNotFound
	}
	if !request.IsPending() {
		return domain.ErrRequestNotPending
	}

	return uc.requestRepo.UpdateStatusIfPending(ctx, request.ID, domain.RequestStatusRejected)
}

func (uc *MatchUseCase) requireNotInGroup(ctx context.Context, userID int) error {
	inGroup, err := uc.inActiveGroup(ctx, userID)
	if err != nil {
		return err
	}
	if inGroup {
		return domain.ErrAlreadyInGroup
	}
	return nil
}

func (uc *MatchUseCase) inActiveGroup(ctx context.Context, userID int) (bool, error) {
	_, err := uc.groupRepo.GetActiveMembership(ctx, userID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domain.ErrGroupNotFound) {
		return false, nil
	}
	return false, err
}

func (uc *MatchUseCase) notifyMatchRequest(ctx context.Context, toEmail, requesterName string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.SendMatchRequest(ctx, toEmail, requesterName); err != nil {
		uc.logger.Warn("match request notification failed",
			zap.String("to", toEmail),
			zap.Error(err),
		)
	}
}

func (uc *MatchUseCase) notifyGroupJoined(ctx context.Context, toEmail, memberName string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.SendGroupJoined(ctx, toEmail, memberName); err != nil {
		uc.logger.Warn("group joined notification failed",
			zap.String("to", toEmail),
			zap.Error(err),
		)
	}
}

// enrichGroup asks the icebreaker source for conversation starters and
// stores them on the group. Best effort: the accept call has already
// committed, so failures only cost the suggestions.
func (uc *MatchUseCase) enrichGroup(groupID int, userA, userB *domain.User) {
	if uc.icebreakers == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		suggestions, err := uc.icebreakers.Icebreakers(ctx, userA.Interests, userB.Interests)
		if err != nil || len(suggestions) == 0 {
			uc.logger.Warn("icebreaker generation failed",
				zap.Int("group_id", groupID),
				zap.Error(err),
			)
			return
		}

		if err := uc.groupRepo.SetIcebreakers(ctx, groupID, suggestions); err != nil {
			uc.logger.Warn("failed to store icebreakers",
				zap.Int("group_id", groupID),
				zap.Error(err),
			)
		}
	}()
}

func (uc *MatchUseCase) feedCacheKey(userID, limit int) string {
	return fmt.Sprintf("matches:%d:%d", userID, limit)
}

func (uc *MatchUseCase) cachedMatches(ctx context.Context, userID, limit int) ([]*MatchResponse, bool) {
	if uc.cache == nil {
		return nil, false
	}

	payload, err := uc.cache.Get(ctx, uc.feedCacheKey(userID, limit)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			uc.logger.Debug("feed cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var matches []*MatchResponse
	if err := json.Unmarshal(payload, &matches); err != nil {
		return nil, false
	}
	return matches, true
}

func (uc *MatchUseCase) storeMatches(ctx context.Context, userID, limit int, matches []*MatchResponse) {
	if uc.cache == nil {
		return
	}

	payload, err := json.Marshal(matches)
	if err != nil {
		return
	}
	if err := uc.cache.Set(ctx, uc.feedCacheKey(userID, limit), payload, feedCacheTTL).Err(); err != nil {
		uc.logger.Debug("feed cache write failed", zap.Error(err))
	}
}
