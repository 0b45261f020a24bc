package user

import (
	"context"

	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
	"go.uber.org/zap"
)

type UserUseCase struct {
	userRepo repository.UserRepository
	logger   *zap.Logger
}

func NewUserUseCase(userRepo repository.UserRepository, logger *zap.Logger) *UserUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserUseCase{
		userRepo: userRepo,
		logger:   logger,
	}
}

// PersonalityPatch updates a subset of the four traits.
type PersonalityPatch struct {
	Extroversion      *int `json:"extroversion" binding:"omitempty,min=1,max=10"`
	Openness          *int `json:"openness" binding:"omitempty,min=1,max=10"`
	Agreeableness     *int `json:"agreeableness" binding:"omitempty,min=1,max=10"`
	Conscientiousness *int `json:"conscientiousness" binding:"omitempty,min=1,max=10"`
}

type AgePreferencePatch struct {
	Min *int `json:"min" binding:"omitempty,min=18,max=100"`
	Max *int `json:"max" binding:"omitempty,min=18,max=100"`
}

// UpdateProfileInput is a partial update. Nil fields are left untouched.
type UpdateProfileInput struct {
	FirstName        *string             `json:"first_name" binding:"omitempty,max=100"`
	Surname          *string             `json:"surname" binding:"omitempty,max=100"`
	Age              *int                `json:"age" binding:"omitempty,min=18,max=120"`
	Profession       *string             `json:"profession" binding:"omitempty,max=100"`
	PrimaryGoal      *string             `json:"primary_goal" binding:"omitempty,connection_goal"`
	Interests        []string            `json:"interests" binding:"omitempty,min=1,max=20"`
	Personality      *PersonalityPatch   `json:"personality"`
	GenderPreference []string            `json:"gender_preference"`
	AgePreference    *AgePreferencePatch `json:"age_preference"`
	Statement        *string             `json:"statement" binding:"omitempty,max=500"`
	Location         *string             `json:"location" binding:"omitempty,max=100"`
	MaxDistance      *int                `json:"max_distance" binding:"omitempty,min=1,max=100"`
}

// GetProfile returns the user's own profile.
func (uc *UserUseCase) GetProfile(ctx context.Context, userID int) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies the non-nil fields of input and returns the updated
// profile.
func (uc *UserUseCase) UpdateProfile(ctx context.Context, userID int, input *UpdateProfileInput) (*domain.User, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.Surname != nil {
		user.Surname = *input.Surname
	}
	if input.Age != nil {
		user.Age = *input.Age
	}
	if input.Profession != nil {
		user.Profession = *input.Profession
	}
	if input.PrimaryGoal != nil {
		user.PrimaryGoal = *input.PrimaryGoal
	}
	if input.Interests != nil {
		user.Interests = input.Interests
	}
	if input.Personality != nil {
		p := input.Personality
		if p.Extroversion != nil {
			user.Extroversion = p.Extroversion
		}
		if p.Openness != nil {
			user.Openness = p.Openness
		}
		if p.Agreeableness != nil {
			user.Agreeableness = p.Agreeableness
		}
		if p.Conscientiousness != nil {
			user.Conscientiousness = p.Conscientiousness
		}
	}
	if input.GenderPreference != nil {
		user.GenderPreference = input.GenderPreference
	}
	if input.AgePreference != nil {
		if input.AgePreference.Min != nil {
			user.PrefMinAge = input.AgePreference.Min
		}
		if input.AgePreference.Max != nil {
			user.PrefMaxAge = input.AgePreference.Max
		}
	}
	if input.Statement != nil {
		user.Statement = input.Statement
	}
	if input.Location != nil {
		user.Location = *input.Location
	}
	if input.MaxDistance != nil {
		user.MaxDistance = *input.MaxDistance
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	uc.logger.Debug("profile updated", zap.Int("user_id", userID))

	return user, nil
}
