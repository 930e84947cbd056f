package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/bloghub/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) Get(ctx context.Context, id int) (types.Comment, error) {
	const query = `
		SELECT id, text, author, post_id, user_id, created_at, updated_at
		FROM comments
		WHERE id = $1`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.Text,
		&comment.Author,
		&comment.PostID,
		&comment.UserID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

// ListByPost returns a post's comments oldest first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	const query = `
		SELECT id, text, author, post_id, user_id, created_at, updated_at
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.Text,
			&comment.Author,
			&comment.PostID,
			&comment.UserID,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, err
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	const query = `
		INSERT INTO comments (text, author, post_id, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.Text,
		comment.Author,
		comment.PostID,
		comment.UserID,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.UpdatedAt = time.Now()

	const query = `
		UPDATE comments
		SET text = $1,
			author = $2,
			updated_at = $3
		WHERE id = $4`
	result, err := r.db.ExecContext(
		ctx,
		query,
		comment.Text,
		comment.Author,
		comment.UpdatedAt,
		comment.ID,
	)
	if err != nil {
		return types.Comment{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Comment{}, err
	}
	if affected == 0 {
		return types.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int) error {
	const query = `DELETE FROM comments WHERE id = $1`
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
