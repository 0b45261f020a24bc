package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/nthottathil/bridge-web-app/internal/domain"
	"github.com/nthottathil/bridge-web-app/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Notifier delivers verification emails. Failures never fail signup; they
// are logged and the code stays readable via resend.
type Notifier interface {
	SendVerificationCode(ctx context.Context, toEmail, code string) error
}

type AuthUseCase struct {
	userRepo  repository.UserRepository
	notifier  Notifier
	jwtSecret string
	expiry    time.Duration
	logger    *zap.Logger
}

func NewAuthUseCase(
	userRepo repository.UserRepository,
	notifier Notifier,
	jwtSecret string,
	expiryDays int,
	logger *zap.Logger,
) *AuthUseCase {
	if expiryDays <= 0 {
		expiryDays = 7
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthUseCase{
		userRepo:  userRepo,
		notifier:  notifier,
		jwtSecret: jwtSecret,
		expiry:    time.Duration(expiryDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// PersonalityInput carries the four 1-10 traits collected at signup.
type PersonalityInput struct {
	Extroversion      int `json:"extroversion" binding:"required,min=1,max=10"`
	Openness          int `json:"openness" binding:"required,min=1,max=10"`
	Agreeableness     int `json:"agreeableness" binding:"required,min=1,max=10"`
	Conscientiousness int `json:"conscientiousness" binding:"required,min=1,max=10"`
}

// AgePreferenceInput is the inclusive age range a user wants matches in.
type AgePreferenceInput struct {
	Min int `json:"min" binding:"required,min=18,max=100"`
	Max int `json:"max" binding:"required,min=18,max=100,gtefield=Min"`
}

// SignupInput is the body of POST /auth/signup.
type SignupInput struct {
	Email            string              `json:"email" binding:"required,email"`
	Password         string              `json:"password" binding:"required,min=8"`
	FirstName        string              `json:"first_name" binding:"required,max=100"`
	Surname          string              `json:"surname" binding:"required,max=100"`
	Age              int                 `json:"age" binding:"required,min=18,max=120"`
	Profession       string              `json:"profession" binding:"required,max=100"`
	PrimaryGoal      string              `json:"primary_goal" binding:"required,connection_goal"`
	Interests        []string            `json:"interests" binding:"required,min=1,max=20"`
	Personality      *PersonalityInput   `json:"personality" binding:"required"`
	GenderPreference []string            `json:"gender_preference" binding:"required"`
	AgePreference    *AgePreferenceInput `json:"age_preference" binding:"required"`
	Statement        *string             `json:"statement" binding:"omitempty,max=500"`
	Location         string              `json:"location" binding:"required,max=100"`
	MaxDistance      int                 `json:"max_distance" binding:"omitempty,min=1,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type VerifyInput struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// TokenResponse is returned on successful verify/login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *domain.User `json:"user"`
}

// Signup creates an unverified account and emails a verification code.
func (uc *AuthUseCase) Signup(ctx context.Context, input *SignupInput) (*domain.User, error) {
	_, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err == nil {
		return nil, domain.ErrEmailTaken
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	code, err := generateVerificationCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}

	maxDistance := input.MaxDistance
	if maxDistance == 0 {
		maxDistance = 5
	}

	user := &domain.User{
		Email:             input.Email,
		PasswordHash:      string(hash),
		EmailVerified:     false,
		VerificationCode:  &code,
		FirstName:         input.FirstName,
		Surname:           input.Surname,
		Age:               input.Age,
		Profession:        input.Profession,
		PrimaryGoal:       input.PrimaryGoal,
		Interests:         input.Interests,
		Extroversion:      &input.Personality.Extroversion,
		Openness:          &input.Personality.Openness,
		Agreeableness:     &input.Personality.Agreeableness,
		Conscientiousness: &input.Personality.Conscientiousness,
		GenderPreference:  input.GenderPreference,
		PrefMinAge:        &input.AgePreference.Min,
		PrefMaxAge:        &input.AgePreference.Max,
		Statement:         input.Statement,
		Location:          input.Location,
		MaxDistance:       maxDistance,
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	uc.sendCode(ctx, user.Email, code)

	return user, nil
}

// Verify checks the emailed code, marks the account verified and issues a
// token.
func (uc *AuthUseCase) Verify(ctx context.Context, input *VerifyInput) (*TokenResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	if user.EmailVerified {
		return nil, domain.ErrAlreadyVerified
	}
	if user.VerificationCode == nil || *user.VerificationCode != input.Code {
		return nil, domain.ErrInvalidCode
	}

	if err := uc.userRepo.SetVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.EmailVerified = true
	user.VerificationCode = nil

	return uc.issueToken(user)
}

// Login authenticates a verified account.
func (uc *AuthUseCase) Login(ctx context.Context, input *LoginInput) (*TokenResponse, error) {
	user, err := uc.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		return nil, domain.ErrEmailNotVerified
	}

	return uc.issueToken(user)
}

// ResendCode issues a fresh verification code to an unverified account.
func (uc *AuthUseCase) ResendCode(ctx context.Context, email string) error {
	user, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	code, err := generateVerificationCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	if err := uc.userRepo.SetVerificationCode(ctx, user.ID, code); err != nil {
		return err
	}

	uc.sendCode(ctx, user.Email, code)

	return nil
}

// VerifyToken parses a bearer token and returns the user id it carries.
func (uc *AuthUseCase) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(uc.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, domain.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, domain.ErrInvalidToken
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, domain.ErrInvalidToken
	}

	return int(userID), nil
}

func (uc *AuthUseCase) issueToken(user *domain.User) (*TokenResponse, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(uc.expiry).Unix(),
		"iat":     now.Unix(),
	})

	signed, err := token.SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		AccessToken: signed,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

func (uc *AuthUseCase) sendCode(ctx context.Context, email, code string) {
	if uc.notifier == nil {
		return
	}
	if err := uc.notifier.SendVerificationCode(ctx, email, code); err != nil {
		uc.logger.Warn("verification email failed",
			zap.String("to", email),
			zap.Error(err),
		)
	}
}

// generateVerificationCode returns a random 6-digit code.
func generateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
