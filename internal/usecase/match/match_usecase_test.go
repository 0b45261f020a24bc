package match

import (
	"context"
	"testing"
	"time"

	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[int]*domain.User
}

func (r *fakeUserRepo) Create(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id int) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *domain.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) ListVerified(ctx context.Context, excludeID int) ([]*domain.User, error) {
	var users []*domain.User
	for _, user := range r.users {
		if user.ID != excludeID && user.EmailVerified {
			users = append(users, user)
		}
	}
	return users, nil
}

func (r *fakeUserRepo) SetVerified(ctx context.Context, id int) error {
	r.users[id].EmailVerified = true
	r.users[id].VerificationCode = nil
	return nil
}

func (r *fakeUserRepo) SetVerificationCode(ctx context.Context, id int, code string) error {
	r.users[id].VerificationCode = &code
	return nil
}

type fakeRequestRepo struct {
	requests []*domain.MatchRequest
	nextID   int
}

func (r *fakeRequestRepo) Create(ctx context.Context, request *domain.MatchRequest) error {
	for _, existing := range r.requests {
		if existing.IsPending() && existing.HasUser(request.FromUserID) && existing.HasUser(request.ToUserID) {
			return domain.ErrRequestExists
		}
	}
	r.nextID++
	request.ID = r.nextID
	request.CreatedAt = time.Now()
	r.requests = append(r.requests, request)
	return nil
}

func (r *fakeRequestRepo) GetByID(ctx context.Context, id int) (*domain.MatchRequest, error) {
	for _, request := range r.requests {
		if request.ID == id {
			return request, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *fakeRequestRepo) GetPendingBetween(ctx context.Context, userA, userB int) (*domain.MatchRequest, error) {
	for _, request := range r.requests {
		if request.IsPending() && request.HasUser(userA) && request.HasUser(userB) {
			return request, nil
		}
	}
	return nil, domain.ErrRequestNotFound
}

func (r *fakeRequestRepo) ListPendingFor(ctx context.Context, toUserID int) ([]*domain.MatchRequest, error) {
	var pending []*domain.MatchRequest
	for _, request := range r.requests {
		if request.IsPending() && request.ToUserID == toUserID {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

func (r *fakeRequestRepo) UpdateStatusIfPending(ctx context.Context, id int, status string) error {
	for _, request := range r.requests {
		if request.ID == id {
			if !request.IsPending() {
				return domain.ErrRequestNotPending
			}
			request.Status = status
			return nil
		}
	}
	return domain.ErrRequestNotFound
}

type fakeGroupRepo struct {
	groups      map[int]*domain.Group
	memberships []*domain.GroupMembership
	nextGroupID int
	nextMemID   int
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[int]*domain.Group{}}
}

func (r *fakeGroupRepo) Create(ctx context.Context, group *domain.Group) error {
	r.nextGroupID++
	group.ID = r.nextGroupID
	group.CreatedAt = time.Now()
	r.groups[group.ID] = group
	return nil
}

func (r *fakeGroupRepo) GetByID(ctx context.Context, id int) (*domain.Group, error) {
	group, ok := r.groups[id]
	if !ok {
		return nil, domain.ErrGroupNotFound
	}
	return group, nil
}

func (r *fakeGroupRepo) SetIcebreakers(ctx context.Context, groupID int, icebreakers []string) error {
	group, ok := r.groups[groupID]
	if !ok {
		return domain.ErrGroupNotFound
	}
	group.Icebreakers = icebreakers
	return nil
}

func (r *fakeGroupRepo) AddMember(ctx context.Context, groupID, userID int) (*domain.GroupMembership, error) {
	for _, m := range r.memberships {
		if m.UserID == userID && m.Status == domain.MembershipStatusActive {
			return nil, domain.ErrAlreadyInGroup
		}
	}
	r.nextMemID++
	membership := &domain.GroupMembership{
		ID:       r.nextMemID,
		GroupID:  groupID,
		UserID:   userID,
		Status:   domain.MembershipStatusActive,
		JoinedAt: time.Now(),
	}
	r.memberships = append(r.memberships, membership)
	return membership, nil
}

func (r *fakeGroupRepo) GetActiveMembership(ctx context.Context, userID int) (*domain.GroupMembership, error) {
	for _, m := range r.memberships {
		if m.UserID == userID && m.Status == domain.MembershipStatusActive {
			return m, nil
		}
	}
	return nil, domain.ErrGroupNotFound
}

func (r *fakeGroupRepo) GetActiveMembershipInGroup(ctx context.Context, userID, groupID int) (*domain.GroupMembership, error) {
	for _, m := range r.memberships {
		if m.UserID == userID && m.GroupID == groupID && m.Status == domain.MembershipStatusActive {
			return m, nil
		}
	}
	return nil, domain.ErrNotGroupMember
}

func (r *fakeGroupRepo) ListActiveMembers(ctx context.Context, groupID int) ([]*domain.GroupMembership, error) {
	var members []*domain.GroupMembership
	for _, m := range r.memberships {
		if m.GroupID == groupID && m.Status == domain.MembershipStatusActive {
			members = append(members, m)
		}
	}
	return members, nil
}

func (r *fakeGroupRepo) SetMembershipStatus(ctx context.Context, membershipID int, status string) error {
	for _, m := range r.memberships {
		if m.ID == membershipID {
			m.Status = status
			return nil
		}
	}
	return domain.ErrGroupNotFound
}

type captureNotifier struct {
	matchRequests []string
	groupJoins    []string
}

func (n *captureNotifier) SendMatchRequest(ctx context.Context, toEmail, requesterName string) error {
	n.matchRequests = append(n.matchRequests, toEmail)
	return nil
}

func (n *captureNotifier) SendGroupJoined(ctx context.Context, toEmail, memberName string) error {
	n.groupJoins = append(n.groupJoins, toEmail)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	users    *fakeUserRepo
	requests *fakeRequestRepo
	groups   *fakeGroupRepo
	uc       *MatchUseCase
}

func newFixture() *fixture {
	users := &fakeUserRepo{users: map[int]*domain.User{}}
	requests := &fakeRequestRepo{}
	groups := newFakeGroupRepo()
	uc := NewMatchUseCase(users, requests, groups, passthroughTx{}, nil, nil, nil, nil)
	return &fixture{users: users, requests: requests, groups: groups, uc: uc}
}

func (f *fixture) addUser(id int, goal string, interests []string, traits int) *domain.User {
	user := testUser(id, goal, interests, intPtr(traits))
	user.EmailVerified = true
	user.Age = 30
	user.FirstName = "User"
	f.users.users[id] = user
	return user
}

func TestFindMatches_RankingAndThreshold(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a", "b", "c"}, 5)
	// Scores 70: half interest overlap, equal traits, related goal.
	f.addUser(2, "mentorship", []string{"b", "c", "d"}, 5)
	// Scores 100: everything identical.
	f.addUser(3, "networking", []string{"a", "b", "c"}, 5)
	// Scores below threshold: no overlap, distant traits, unrelated goal.
	f.addUser(4, "friendship", []string{"x"}, 10)

	matches, err := f.uc.FindMatches(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 3, matches[0].UserID)
	assert.Equal(t, 100, matches[0].CompatibilityScore)
	assert.Equal(t, 2, matches[1].UserID)
	assert.Equal(t, 70, matches[1].CompatibilityScore)
}

func TestFindMatches_TieBreakAndLimit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	// Four identical candidates, all score 100. Ranking falls back to id.
	for id := 5; id >= 2; id-- {
		f.addUser(id, "networking", []string{"a"}, 5)
	}

	matches, err := f.uc.FindMatches(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, DefaultLimit)
	assert.Equal(t, 2, matches[0].UserID)
	assert.Equal(t, 3, matches[1].UserID)
	assert.Equal(t, 4, matches[2].UserID)

	matches, err = f.uc.FindMatches(ctx, 1, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFindMatches_ExcludesGroupMembersAndPendingPairs(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	inGroup := f.addUser(2, "networking", []string{"a"}, 5)
	pendingIncoming := f.addUser(3, "networking", []string{"a"}, 5)
	f.addUser(4, "networking", []string{"a"}, 5)

	group := &domain.Group{}
	require.NoError(t, f.groups.Create(ctx, group))
	_, err := f.groups.AddMember(ctx, group.ID, inGroup.ID)
	require.NoError(t, err)

	// Incoming pending request also hides the pair from the feed.
	require.NoError(t, f.requests.Create(ctx, &domain.MatchRequest{
		FromUserID: pendingIncoming.ID,
		ToUserID:   1,
		Status:     domain.RequestStatusPending,
	}))

	matches, err := f.uc.FindMatches(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 4, matches[0].UserID)
}

func TestFindMatches_AgePreference(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	me := f.addUser(1, "networking", []string{"a"}, 5)
	me.PrefMinAge = intPtr(25)
	me.PrefMaxAge = intPtr(35)

	tooYoung := f.addUser(2, "networking", []string{"a"}, 5)
	tooYoung.Age = 22
	f.addUser(3, "networking", []string{"a"}, 5) // age 30

	matches, err := f.uc.FindMatches(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 3, matches[0].UserID)
}

func TestFindMatches_CallerInGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	me := f.addUser(1, "networking", []string{"a"}, 5)
	group := &domain.Group{}
	require.NoError(t, f.groups.Create(ctx, group))
	_, err := f.groups.AddMember(ctx, group.ID, me.ID)
	require.NoError(t, err)

	_, err = f.uc.FindMatches(ctx, 1, 0)
	assert.ErrorIs(t, err, domain.ErrAlreadyInGroup)
}

func TestCreateRequest(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)

	request, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusPending, request.Status)
	assert.Equal(t, 1, request.FromUserID)
	assert.Equal(t, 2, request.ToUserID)

	// Same direction again.
	_, err = f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	assert.ErrorIs(t, err, domain.ErrRequestExists)

	// Opposite direction while the first is still pending.
	_, err = f.uc.CreateRequest(ctx, 2, &CreateRequestInput{ToUserID: 1})
	assert.ErrorIs(t, err, domain.ErrRequestExists)
}

func TestCreateRequest_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	grouped := f.addUser(2, "networking", []string{"a"}, 5)

	group := &domain.Group{}
	require.NoError(t, f.groups.Create(ctx, group))
	_, err := f.groups.AddMember(ctx, group.ID, grouped.ID)
	require.NoError(t, err)

	_, err = f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 1})
	assert.ErrorIs(t, err, domain.ErrSelfMatch)

	_, err = f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	assert.ErrorIs(t, err, domain.ErrTargetInGroup)

	_, err = f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 99})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = f.uc.CreateRequest(ctx, 2, &CreateRequestInput{ToUserID: 1})
	assert.ErrorIs(t, err, domain.ErrAlreadyInGroup)
}

func TestListIncoming(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)

	_, err := f.uc.CreateRequest(ctx, 2, &CreateRequestInput{ToUserID: 1})
	require.NoError(t, err)

	incoming, err := f.uc.ListIncoming(ctx, 1)
	require.NoError(t, err)
	require.Len(t, incoming, 1)
	assert.Equal(t, 2, incoming[0].FromUser.UserID)
	assert.Equal(t, 100, incoming[0].FromUser.CompatibilityScore)

	// The sender sees nothing incoming.
	incoming, err = f.uc.ListIncoming(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, incoming)
}

func TestAccept_CreatesGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)

	request, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)

	result, err := f.uc.Accept(ctx, 2, request.ID)
	require.NoError(t, err)
	assert.Equal(t, request.ID, result.RequestID)
	require.NotZero(t, result.GroupID)

	members, err := f.groups.ListActiveMembers(ctx, result.GroupID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusAccepted, stored.Status)
}

func TestAccept_JoinsSendersExistingGroup(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)
	f.addUser(3, "networking", []string{"a"}, 5)

	// 1 and 2 form a group.
	req12, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)

	// 1 also asked 3 before forming the group.
	req13, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 3})
	require.NoError(t, err)

	first, err := f.uc.Accept(ctx, 2, req12.ID)
	require.NoError(t, err)

	second, err := f.uc.Accept(ctx, 3, req13.ID)
	require.NoError(t, err)
	assert.Equal(t, first.GroupID, second.GroupID)

	members, err := f.groups.ListActiveMembers(ctx, first.GroupID)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestAccept_NotificationsOnlyOnExistingGroupJoin(t *testing.T) {
	f := newFixture()
	notifier := &captureNotifier{}
	f.uc = NewMatchUseCase(f.users, f.requests, f.groups, passthroughTx{}, notifier, nil, nil, nil)
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5).Email = "one@example.com"
	f.addUser(2, "networking", []string{"a"}, 5)
	f.addUser(3, "networking", []string{"a"}, 5)

	req12, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)
	req13, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 3})
	require.NoError(t, err)

	// Forming a fresh group sends nothing.
	_, err = f.uc.Accept(ctx, 2, req12.ID)
	require.NoError(t, err)
	assert.Empty(t, notifier.groupJoins)

	// Joining the requester's existing group notifies the requester.
	_, err = f.uc.Accept(ctx, 3, req13.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"one@example.com"}, notifier.groupJoins)
}

func TestAccept_Guards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)

	request, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)

	// Only the recipient may accept.
	_, err = f.uc.Accept(ctx, 1, request.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	_, err = f.uc.Accept(ctx, 2, 999)
	assert.ErrorIs(t, err, domain.ErrRequestNotFound)

	_, err = f.uc.Accept(ctx, 2, request.ID)
	require.NoError(t, err)

	// A second accept of the same request loses.
	_, err = f.uc.Accept(ctx, 2, request.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)
}

func TestReject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addUser(1, "networking", []string{"a"}, 5)
	f.addUser(2, "networking", []string{"a"}, 5)

	request, err := f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	require.NoError(t, err)

	require.NoError(t, f.uc.Reject(ctx, 2, request.ID))

	stored, err := f.requests.GetByID(ctx, request.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, stored.Status)

	// A rejected request cannot be accepted afterwards.
	_, err = f.uc.Accept(ctx, 2, request.ID)
	assert.ErrorIs(t, err, domain.ErrRequestNotPending)

	// The pair becomes requestable again once the request is settled.
	_, err = f.uc.CreateRequest(ctx, 1, &CreateRequestInput{ToUserID: 2})
	assert.NoError(t, err)
}
