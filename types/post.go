package types

import "time"

// Post represents a blog post authored by a user.
type Post struct {
	// ID is the unique identifier of the post.
	ID int `json:"id" db:"id"`

	// Title is the post headline.
	Title string `json:"title" db:"title"`

	// Description is the post body text.
	Description string `json:"description" db:"description"`

	// Photo is the fully qualified URL of the post image, or empty when
	// the post has no image. The URL is derived from the configured
	// public base URL at creation time.
	Photo string `json:"photo" db:"photo"`

	// UserID is the identifier of the owning user. Only the owner may
	// update or delete the post.
	UserID int `json:"user_id" db:"user_id"`

	// Username is the owner's username, joined in on reads. It is not a
	// column of the posts table.
	Username string `json:"username,omitempty" db:"-"`

	// Categories are free-form labels associated with the post.
	// Defaults to ["tech"] when none are supplied.
	Categories []string `json:"categories" db:"categories"`

	// CreatedAt is the timestamp at which the post was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the post.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
