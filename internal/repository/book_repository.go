package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bookwormhq/bookworm-api/internal/model"
)

// BookRepo persists book recommendation posts.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

// Create inserts a book post and returns the stored record.  Timestamps are
// set here in UTC so the returned record matches the row without a second
// round trip for defaults.
func (r *BookRepo) Create(ctx context.Context, title, caption string, rating int, imageURL string, userID uint64) (model.Book, error) {
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO books (title, caption, rating, image, user_id, created_at, updated_at) VALUES (?,?,?,?,?,?,?)",
		title, caption, rating, imageURL, userID, now, now)
	if err != nil {
		return model.Book{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Book{}, err
	}
	return model.Book{
		ID:        uint64(id),
		Title:     title,
		Caption:   caption,
		Rating:    rating,
		Image:     imageURL,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetByID fetches a single book post.
func (r *BookRepo) GetByID(ctx context.Context, id uint64) (model.Book, error) {
	var b model.Book
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,caption,rating,image,user_id,created_at,updated_at FROM books WHERE id=? LIMIT 1",
		id).Scan(&b.ID, &b.Title, &b.Caption, &b.Rating, &b.Image, &b.UserID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Book{}, ErrBookNotFound
	}
	return b, err
}

// ListPage returns one page of the feed, newest first, together with the
// total number of posts.  Each row carries the owner's username and avatar
// via a join; no other owner fields leave this query.  Equal creation times
// are broken by id so the ordering stays deterministic across pages.
func (r *BookRepo) ListPage(ctx context.Context, page, limit int) ([]model.FeedItem, int64, error) {
	var total int64
	if err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM books").Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	rows, err := r.DB.QueryContext(ctx,
		`SELECT b.id, b.title, b.caption, b.rating, b.image, b.user_id, b.created_at, b.updated_at,
			u.username, u.profile_image
		FROM books b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT ? OFFSET ?`,
		limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.FeedItem, 0, limit)
	for rows.Next() {
		var it model.FeedItem
		if err := rows.Scan(
			&it.ID, &it.Title, &it.Caption, &it.Rating, &it.Image, &it.UserID,
			&it.CreatedAt, &it.UpdatedAt,
			&it.User.Username, &it.User.ProfileImage,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ListByOwner returns all posts belonging to one user, newest first.
func (r *BookRepo) ListByOwner(ctx context.Context, userID uint64) ([]model.Book, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id,title,caption,rating,image,user_id,created_at,updated_at
		FROM books WHERE user_id=?
		ORDER BY created_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Book{}
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Caption, &b.Rating, &b.Image, &b.UserID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteByID removes a book post.  Ownership is checked by the handler
// before calling this, against the record loaded with GetByID.
func (r *BookRepo) DeleteByID(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrBookNotFound
	}
	return nil
}
