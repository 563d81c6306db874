package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"locallisting/internal/models"
)

// DuplicateError names the unique field that rejected an insert or update.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func duplicateUserField(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return nil
	}
	switch pqErr.Constraint {
	case "users_username_key":
		return &DuplicateError{Field: "username"}
	default:
		return &DuplicateError{Field: "email"}
	}
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// CreateUser stores the user and its empty profile in one transaction.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	user.UserID = uuid.New().String()
	user.PasswordHash = string(hashedPassword)
	user.IsActive = true
	if user.DateJoined.IsZero() {
		user.DateJoined = time.Now()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (user_id, email, username, street, zip, city, password_hash, is_active, date_joined, refresh_token, refresh_token_expiry_time)
		VALUES (:user_id, :email, :username, :street, :zip, :city, :password_hash, :is_active, :date_joined, :refresh_token, :refresh_token_expiry_time)
	`

	if _, err = tx.NamedExecContext(ctx, query, user); err != nil {
		if dup := duplicateUserField(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error creating user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO profiles (user_id, date_joined) VALUES ($1, $2)`, user.UserID, user.DateJoined)
	if err != nil {
		return fmt.Errorf("error creating profile: %w", err)
	}

	return tx.Commit()
}

func (r *userRepository) getUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	var user models.User

	err := r.db.GetContext(ctx, &user, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE user_id = $1`, userID)
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT * FROM users WHERE email = $1`, email)
}

func (r *userRepository) GetUserByResetToken(ctx context.Context, token string) (*models.User, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrNotFound
	}
	return r.getUser(ctx, `SELECT * FROM users WHERE password_reset_token = $1`, token)
}

// VerifyPassword returns ErrNotFound for both an unknown email and a wrong password.
func (r *userRepository) VerifyPassword(ctx context.Context, email, password string) (*models.User, error) {
	user, err := r.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrNotFound
	}

	return user, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET username = :username, street = :street, zip = :zip, city = :city
		WHERE user_id = :user_id
	`

	result, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		if dup := duplicateUserField(err); dup != nil {
			return dup
		}
		return fmt.Errorf("error updating user: %w", err)
	}

	return checkAffected(result)
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}

	query := `
		UPDATE users
		SET password_hash = $1, password_reset_token = NULL
		WHERE user_id = $2
	`

	result, err := r.db.ExecContext(ctx, query, string(hashedPassword), userID)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}

	return checkAffected(result)
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, userID, token string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE users SET password_reset_token = $1 WHERE user_id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("error setting password reset token: %w", err)
	}

	return checkAffected(result)
}

func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, refreshToken string, expiryTime time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $1, refresh_token_expiry_time = $2
		WHERE user_id = $3
	`

	_, err := r.db.ExecContext(ctx, query, refreshToken, expiryTime, userID)
	if err != nil {
		return fmt.Errorf("error updating refresh token: %w", err)
	}

	return nil
}

func (r *userRepository) GetUserByRefreshToken(ctx context.Context, refreshToken string) (*models.User, error) {
	query := `
		SELECT * FROM users
		WHERE refresh_token = $1
		AND refresh_token_expiry_time > CURRENT_TIMESTAMP
	`

	return r.getUser(ctx, query, refreshToken)
}

func checkAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
