package match

import (
	"testing"

	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func testUser(id int, goal string, interests []string, traits *int) *domain.User {
	u := &domain.User{
		ID:          id,
		PrimaryGoal: goal,
		Interests:   interests,
	}
	if traits != nil {
		u.Extroversion = intPtr(*traits)
		u.Openness = intPtr(*traits)
		u.Agreeableness = intPtr(*traits)
		u.Conscientiousness = intPtr(*traits)
	}
	return u
}

func TestInterestScore(t *testing.T) {
	tests := []struct {
		name  string
		a, b  []string
		score float64
	}{
		{
			name:  "half overlap",
			a:     []string{"hiking", "books", "cooking"},
			b:     []string{"books", "cooking", "travel"},
			score: 15, // 2/4 of 30
		},
		{
			name:  "identical sets",
			a:     []string{"hiking", "books"},
			b:     []string{"books", "hiking"},
			score: 30,
		},
		{
			name:  "disjoint sets",
			a:     []string{"hiking"},
			b:     []string{"chess"},
			score: 0,
		},
		{
			name:  "empty side scores zero",
			a:     nil,
			b:     []string{"hiking"},
			score: 0,
		},
		{
			name:  "duplicates collapse",
			a:     []string{"hiking", "hiking"},
			b:     []string{"hiking"},
			score: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.score, interestScore(tt.a, tt.b), 1e-9)
		})
	}
}

func TestPersonalityScore(t *testing.T) {
	t.Run("identical traits score full weight", func(t *testing.T) {
		a := testUser(1, "networking", nil, intPtr(5))
		b := testUser(2, "networking", nil, intPtr(5))
		assert.InDelta(t, 40, personalityScore(a, b), 1e-9)
	})

	t.Run("maximum distance scores zero", func(t *testing.T) {
		a := testUser(1, "networking", nil, intPtr(1))
		b := testUser(2, "networking", nil, intPtr(10))
		assert.InDelta(t, 0, personalityScore(a, b), 1e-9)
	})

	t.Run("only shared traits contribute", func(t *testing.T) {
		a := &domain.User{Extroversion: intPtr(5), Openness: intPtr(9)}
		b := &domain.User{Extroversion: intPtr(5)}
		// Openness is missing on b, so the single shared trait is exact.
		assert.InDelta(t, 40, personalityScore(a, b), 1e-9)
	})

	t.Run("no shared traits scores zero", func(t *testing.T) {
		a := &domain.User{Extroversion: intPtr(5)}
		b := &domain.User{Openness: intPtr(5)}
		assert.InDelta(t, 0, personalityScore(a, b), 1e-9)
	})
}

func TestGoalScore(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		score float64
	}{
		{"exact match", "networking", "networking", 30},
		{"related professional goals", "networking", "mentorship", 15},
		{"related social goals", "friendship", "socialising", 15},
		{"professional vs social", "networking", "friendship", 0},
		{"unknown goal", "something_else", "networking", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.score, goalScore(tt.a, tt.b), 1e-9)
		})
	}
}

func TestGoalTableIsMirrored(t *testing.T) {
	for goal, related := range compatibleGoals {
		for _, other := range related {
			assert.Contains(t, compatibleGoals[other], goal,
				"goal %q lists %q but not vice versa", goal, other)
		}
	}
}

func TestCompatibilityScore(t *testing.T) {
	t.Run("worked example", func(t *testing.T) {
		a := testUser(1, "networking", []string{"a", "b", "c"}, intPtr(5))
		b := testUser(2, "mentorship", []string{"b", "c", "d"}, intPtr(5))
		// interests 15 + personality 40 + related goal 15
		assert.Equal(t, 70, CompatibilityScore(a, b))
	})

	t.Run("perfect match scores 100", func(t *testing.T) {
		a := testUser(1, "hobbies", []string{"chess"}, intPtr(7))
		b := testUser(2, "hobbies", []string{"chess"}, intPtr(7))
		assert.Equal(t, 100, CompatibilityScore(a, b))
	})

	t.Run("nothing in common scores 0", func(t *testing.T) {
		a := testUser(1, "networking", []string{"a"}, nil)
		b := testUser(2, "friendship", []string{"b"}, nil)
		assert.Equal(t, 0, CompatibilityScore(a, b))
	})

	t.Run("total is rounded", func(t *testing.T) {
		a := &domain.User{
			PrimaryGoal:  "networking",
			Interests:    []string{"a"},
			Extroversion: intPtr(5),
		}
		b := &domain.User{
			PrimaryGoal:  "friendship",
			Interests:    []string{"a", "b"},
			Extroversion: intPtr(6),
		}
		// 15 + 40*8/9 + 0 = 50.555... rounds to 51
		assert.Equal(t, 51, CompatibilityScore(a, b))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := testUser(1, "networking", []string{"a", "b"}, intPtr(3))
		b := testUser(2, "mentorship", []string{"b", "c"}, intPtr(8))
		assert.Equal(t, CompatibilityScore(a, b), CompatibilityScore(b, a))
	})
}
