package types

import "time"

// Comment represents a comment attached to a post.
type Comment struct {
	// ID is the unique identifier of the comment.
	ID int `json:"id" db:"id"`

	// Text is the comment body.
	Text string `json:"text" db:"text"`

	// Author is the display name supplied with the comment.
	Author string `json:"author" db:"author"`

	// PostID is the identifier of the post this comment belongs to.
	// Existence of the post is not verified at creation time.
	PostID int `json:"post_id" db:"post_id"`

	// UserID is the identifier of the authenticated user who created
	// the comment, or zero when unknown.
	UserID int `json:"user_id,omitempty" db:"user_id"`

	// CreatedAt is the timestamp at which the comment was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the comment.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
