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

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// userColumns is the select list shared by the lookup queries. interests and
// gender_preference are text[] and must go through pq.Array, so the rows are
// scanned explicitly instead of via StructScan.
const userColumns = `
	id, email, password_hash, email_verified, verification_code,
	first_name, surname, age, profession,
	primary_goal, interests,
	extroversion, openness, agreeableness, conscientiousness,
	gender_preference, pref_min_age, pref_max_age,
	statement, location, max_distance,
	created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.EmailVerified, &user.VerificationCode,
		&user.FirstName, &user.Surname, &user.Age, &user.Profession,
		&user.PrimaryGoal, pq.Array(&user.Interests),
		&user.Extroversion, &user.Openness, &user.Agreeableness, &user.Conscientiousness,
		pq.Array(&user.GenderPreference), &user.PrefMinAge, &user.PrefMaxAge,
		&user.Statement, &user.Location, &user.MaxDistance,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (
			email, password_hash, email_verified, verification_code,
			first_name, surname, age, profession,
			primary_goal, interests,
			extroversion, openness, agreeableness, conscientiousness,
			gender_preference, pref_min_age, pref_max_age,
			statement, location, max_distance
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id, created_at
	`
	err := ext(ctx, r.db).QueryRowxContext(
		ctx, query,
		user.Email, user.PasswordHash, user.EmailVerified, user.VerificationCode,
		user.FirstName, user.Surname, user.Age, user.Profession,
		user.PrimaryGoal, pq.Array(user.Interests),
		user.Extroversion, user.Openness, user.Agreeableness, user.Conscientiousness,
		pq.Array(user.GenderPreference), user.PrefMinAge, user.PrefMaxAge,
		user.Statement, user.Location, user.MaxDistance,
	).Scan(&user.ID, &user.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(ext(ctx, r.db).QueryRowxContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(ext(ctx, r.db).QueryRowxContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $1, surname = $2, age = $3, profession = $4,
		    primary_goal = $5, interests = $6,
		    extroversion = $7, openness = $8, agreeableness = $9, conscientiousness = $10,
		    gender_preference = $11, pref_min_age = $12, pref_max_age = $13,
		    statement = $14, location = $15, max_distance = $16,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $17
		RETURNING updated_at
	`
	err := ext(ctx, r.db).QueryRowxContext(
		ctx, query,
		user.FirstName, user.Surname, user.Age, user.Profession,
		user.PrimaryGoal, pq.Array(user.Interests),
		user.Extroversion, user.Openness, user.Agreeableness, user.Conscientiousness,
		pq.Array(user.GenderPreference), user.PrefMinAge, user.PrefMaxAge,
		user.Statement, user.Location, user.MaxDistance,
		user.ID,
	).Scan(&user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrUserNotFound
	}
	return err
}

func (r *userRepository) ListVerified(ctx context.Context, excludeID int) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email_verified = true AND id != $1 ORDER BY id`
	rows, err := ext(ctx, r.db).QueryxContext(ctx, query, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *userRepository) SetVerified(ctx context.Context, id int) error {
	query := `
		UPDATE users
		SET email_verified = true, verification_code = NULL, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetVerificationCode(ctx context.Context, id int, code string) error {
	query := `UPDATE users SET verification_code = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	result, err := ext(ctx, r.db).ExecContext(ctx, query, code, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
