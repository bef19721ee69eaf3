package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/sweet-shop-api/internal/model"
)

// UserRepo provides access to the 'users' table. Usernames are stored
// and matched case-sensitively; emails are normalized to lower case on
// the way in. Uniqueness of both columns is enforced by the database.
type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the underlying pool so handlers can open transactions
// spanning multiple repositories.
func (r *UserRepo) DB() *sql.DB { return r.db }

const userCols = "id, username, email, password_hash, role, reset_token, reset_token_expires, created_at"

// scanUser reads one user row including the nullable reset columns.
func scanUser(row *sql.Row) (model.User, error) {
	var (
		u      model.User
		token  sql.NullString
		expiry sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &token, &expiry, &u.CreatedAt)
	if err != nil {
		return model.User{}, err
	}
	if token.Valid {
		t := token.String
		u.ResetToken = &t
	}
	if expiry.Valid {
		e := expiry.Time
		u.ResetTokenExpires = &e
	}
	return u, nil
}

// Create inserts a user with an already-hashed password and returns its
// ID. A duplicate username or email yields ErrUserExists.
func (r *UserRepo) Create(ctx context.Context, username, email, passwordHash, role string) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, role) VALUES (?,?,?,?)",
		username, email, passwordHash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrUserExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by exact username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1", username))
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1", id))
}

// GetByResetToken fetches the user holding a pending reset token.
func (r *UserRepo) GetByResetToken(ctx context.Context, token string) (model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE reset_token=? LIMIT 1", token))
}

// SetResetToken stores a reset token and its expiry on the user row.
// Both columns are written together; a token without an expiry never
// exists.
func (r *UserRepo) SetResetToken(ctx context.Context, userID uint64, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET reset_token=?, reset_token_expires=? WHERE id=?",
		token, expiresAt, userID)
	return err
}

// ClearResetToken removes any pending reset token from the user row.
// Called when a token expires so a stale token cannot linger forever.
func (r *UserRepo) ClearResetToken(ctx context.Context, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET reset_token=NULL, reset_token_expires=NULL WHERE id=?", userID)
	return err
}

// UpdatePassword replaces the password hash and clears the reset token
// in the same statement, so consuming a reset is atomic.
func (r *UserRepo) UpdatePassword(ctx context.Context, userID uint64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE users SET password_hash=?, reset_token=NULL, reset_token_expires=NULL WHERE id=?",
		passwordHash, userID)
	return err
}
