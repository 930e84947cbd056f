package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/bloghub/apiserver/types"
)

// PostRepository handles persistence for posts.
type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository {
	return &PostRepository{db: db}
}

const postColumns = `
	p.id, p.title, p.description, p.photo, p.user_id, p.categories,
	p.created_at, p.updated_at, u.username`

func (r *PostRepository) Get(ctx context.Context, id int) (types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Post{}, ErrNotFound
		}
		return types.Post{}, err
	}
	return post, nil
}

// List returns posts newest first. A non-empty search term filters by a
// case-insensitive substring match on the title.
func (r *PostRepository) List(ctx context.Context, search string) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE $1 = '' OR p.title ILIKE '%' || $1 || '%'
		ORDER BY p.created_at DESC`
	return r.queryPosts(ctx, query, search)
}

// ListByUser returns a user's posts newest first.
func (r *PostRepository) ListByUser(ctx context.Context, userID int) ([]types.Post, error) {
	const query = `
		SELECT ` + postColumns + `
		FROM posts p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
		ORDER BY p.created_at DESC`
	return r.queryPosts(ctx, query, userID)
}

func (r *PostRepository) Create(ctx context.Context, post types.Post) (types.Post, error) {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	categoriesJSON, err := json.Marshal(post.Categories)
	if err != nil {
		return types.Post{}, err
	}

	const query = `
		INSERT INTO posts (title, description, photo, user_id, categories, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		post.Title,
		post.Description,
		post.Photo,
		post.UserID,
		categoriesJSON,
		post.CreatedAt,
		post.UpdatedAt,
	).Scan(&post.ID); err != nil {
		return types.Post{}, err
	}
	return post, nil
}

func (r *PostRepository) Update(ctx context.Context, post types.Post) (types.Post, error) {
	post.UpdatedAt = time.Now()

	categoriesJSON, err := json.Marshal(post.Categories)
	if err != nil {
		return types.Post{}, err
	}

	const query = `
		UPDATE posts
		SET title = $1,
			description = $2,
			photo = $3,
			categories = $4,
			updated_at = $5
		WHERE id = $6`
	result, err := r.db.ExecContext(
		ctx,
		query,
		post.Title,
		post.Description,
		post.Photo,
		categoriesJSON,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return types.Post{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Post{}, err
	}
	if affected == 0 {
		return types.Post{}, ErrNotFound
	}
	return post, nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM posts WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]types.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := make([]types.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return posts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (types.Post, error) {
	var post types.Post
	var categoriesJSON []byte
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&post.Photo,
		&post.UserID,
		&categoriesJSON,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.Username,
	); err != nil {
		return types.Post{}, err
	}
	_ = json.Unmarshal(categoriesJSON, &post.Categories)
	return post, nil
}
