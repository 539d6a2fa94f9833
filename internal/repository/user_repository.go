package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bookwormhq/bookworm-api/internal/model"
	"github.com/bookwormhq/bookworm-api/internal/utils"
)

// UserRepo persists user records.  Password hashing happens here, in
// Create, so a plaintext password can never reach the database: the row is
// written with the bcrypt digest produced from the incoming plaintext.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create hashes the password and inserts a new user, returning the stored
// record.  Unique-index violations are mapped to ErrEmailExists or
// ErrUsernameExists so a duplicate racing past the handler's pre-checks
// still surfaces as a distinguishable conflict.
func (r *UserRepo) Create(ctx context.Context, username, email, password, profileImage string, cost int) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return model.User{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (username, email, password_hash, profile_image) VALUES (?,?,?,?)",
		username, email, hash, profileImage)
	if err != nil {
		if dup, which := duplicateKey(err); dup {
			return model.User{}, which
		}
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return r.GetByID(ctx, uint64(id))
}

// GetByEmail fetches a user by normalized email, including the password
// hash for credential verification during login.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,password_hash,profile_image,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id without the password hash.  The auth
// middleware uses this to resolve token subjects, so the hash must never
// travel with the resolved identity.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,username,email,profile_image,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Username, &u.Email, &u.ProfileImage, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrUserNotFound
	}
	return u, err
}

// EmailTaken reports whether a user with the given email already exists.
func (r *UserRepo) EmailTaken(ctx context.Context, email string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE email=? LIMIT 1", email).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// UsernameTaken reports whether a user with the given username already exists.
func (r *UserRepo) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// duplicateKey inspects a MySQL error for a unique-index violation (error
// 1062) and picks the matching sentinel from the index name.
func duplicateKey(err error) (bool, error) {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return false, nil
	}
	if strings.Contains(msg, "uq_users_username") {
		return true, ErrUsernameExists
	}
	return true, ErrEmailExists
}
