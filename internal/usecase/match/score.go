package match

import (
	"math"

	"github.com/nthottathil/bridge-web-app/internal/domain"
)

// Compatibility scoring, 0-100 total:
//   - interest overlap      0-30 (Jaccard similarity of interest sets)
//   - personality closeness 0-40 (trait distance on the shared 1-10 traits)
//   - goal alignment        0-30 (exact match 30, related goal 15)
//
// Candidates below MinScore are never shown.
const (
	interestWeight    = 30.0
	personalityWeight = 40.0
	goalWeight        = 30.0

	// maxTraitDiff is the largest possible difference on the 1-10 trait scale.
	maxTraitDiff = 9.0

	MinScore = 50
)

// compatibleGoals gives partial credit for related connection goals. The
// table is mirrored: k in compatibleGoals[v] for every v in
// compatibleGoals[k].
var compatibleGoals = map[string][]string{
	"networking":               {"professional_development", "mentorship"},
	"professional_development": {"networking", "mentorship"},
	"mentorship":               {"professional_development", "networking"},
	"friendship":               {"socialising", "hobbies"},
	"socialising":              {"friendship", "hobbies"},
	"hobbies":                  {"friendship", "socialising"},
}

func interestScore(userInterests, otherInterests []string) float64 {
	if len(userInterests) == 0 || len(otherInterests) == 0 {
		return 0
	}

	userSet := make(map[string]struct{}, len(userInterests))
	for _, interest := range userInterests {
		userSet[interest] = struct{}{}
	}
	otherSet := make(map[string]struct{}, len(otherInterests))
	for _, interest := range otherInterests {
		otherSet[interest] = struct{}{}
	}

	intersection := 0
	for interest := range userSet {
		if _, ok := otherSet[interest]; ok {
			intersection++
		}
	}
	union := len(userSet) + len(otherSet) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union) * interestWeight
}

func personalityScore(user, other *domain.User) float64 {
	pairs := [][2]*int{
		{user.Extroversion, other.Extroversion},
		{user.Openness, other.Openness},
		{user.Agreeableness, other.Agreeableness},
		{user.Conscientiousness, other.Conscientiousness},
	}

	totalDiff := 0.0
	traitCount := 0
	for _, pair := range pairs {
		// Only traits present on both profiles contribute.
		if pair[0] == nil || pair[1] == nil {
			continue
		}
		totalDiff += math.Abs(float64(*pair[0]-*pair[1])) / maxTraitDiff
		traitCount++
	}

	if traitCount == 0 {
		return 0
	}

	similarity := 1.0 - totalDiff/float64(traitCount)
	return similarity * personalityWeight
}

func goalScore(userGoal, otherGoal string) float64 {
	if userGoal == otherGoal {
		return goalWeight
	}
	for _, goal := range compatibleGoals[userGoal] {
		if goal == otherGoal {
			return goalWeight / 2
		}
	}
	return 0
}

// CompatibilityScore computes the total score for the ordered pair
// (user, other).
func CompatibilityScore(user, other *domain.User) int {
	total := interestScore(user.Interests, other.Interests) +
		personalityScore(user, other) +
		goalScore(user.PrimaryGoal, other.PrimaryGoal)
	return int(math.Round(total))
}
