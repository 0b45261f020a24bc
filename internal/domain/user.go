package domain

import "time"

// Default age preference bounds applied when a user has not set a range.
const (
	DefaultMinAge = 18
	DefaultMaxAge = 100
)

type User struct {
	ID               int     `json:"id" db:"id"`
	Email            string  `json:"email" db:"email"`
	PasswordHash     string  `json:"-" db:"password_hash"`
	EmailVerified    bool    `json:"email_verified" db:"email_verified"`
	VerificationCode *string `json:"-" db:"verification_code"`

	FirstName  string `json:"first_name" db:"first_name"`
	Surname    string `json:"surname" db:"surname"`
	Age        int    `json:"age" db:"age"`
	Profession string `json:"profession" db:"profession"`

	PrimaryGoal string   `json:"primary_goal" db:"primary_goal"`
	Interests   []string `json:"interests" db:"interests"`

	// Big Five style traits on a 1-10 scale. Nullable: scoring only uses
	// traits present on both sides of a pair.
	Extroversion      *int `json:"extroversion" db:"extroversion"`
	Openness          *int `json:"openness" db:"openness"`
	Agreeableness     *int `json:"agreeableness" db:"agreeableness"`
	Conscientiousness *int `json:"conscientiousness" db:"conscientiousness"`

	GenderPreference []string `json:"gender_preference" db:"gender_preference"`
	PrefMinAge       *int     `json:"pref_min_age" db:"pref_min_age"`
	PrefMaxAge       *int     `json:"pref_max_age" db:"pref_max_age"`

	Statement   *string `json:"statement" db:"statement"`
	Location    string  `json:"location" db:"location"`
	MaxDistance int     `json:"max_distance" db:"max_distance"`

	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at" db:"updated_at"`
}

// AgeRange returns the inclusive age preference bounds, falling back to the
// defaults when unset.
func (u *User) AgeRange() (int, int) {
	min, max := DefaultMinAge, DefaultMaxAge
	if u.PrefMinAge != nil {
		min = *u.PrefMinAge
	}
	if u.PrefMaxAge != nil {
		max = *u.PrefMaxAge
	}
	return min, max
}
