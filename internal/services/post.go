package services

import (
	"context"
	"strings"

	"github.com/bloghub/apiserver/types"
)

// DefaultCategories is applied to posts created without any category.
var DefaultCategories = []string{"tech"}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Get(ctx context.Context, id int) (types.Post, error)
	List(ctx context.Context, search string) ([]types.Post, error)
	ListByUser(ctx context.Context, userID int) ([]types.Post, error)
	Create(ctx context.Context, post types.Post) (types.Post, error)
	Update(ctx context.Context, post types.Post) (types.Post, error)
	Delete(ctx context.Context, id int) error
}

// PostUpsert carries the mutable post fields. The Photo field is a bare
// object-storage filename; the service resolves it to a public URL.
// Empty fields are left unchanged on update.
type PostUpsert struct {
	Title       string
	Description string
	Photo       string
	Categories  []string
}

// PostService encapsulates post use-cases, including the owner-only
// mutation rule.
type PostService struct {
	repo     PostRepository
	events   *EventPublisher
	photoURL string
}

// NewPostService constructs a PostService. publicBaseURL is the prefix
// under which uploaded images are served.
func NewPostService(repo PostRepository, events *EventPublisher, publicBaseURL string) *PostService {
	return &PostService{
		repo:     repo,
		events:   events,
		photoURL: strings.TrimRight(publicBaseURL, "/") + "/images/",
	}
}

func (s *PostService) Get(ctx context.Context, id int) (types.Post, error) {
	return s.repo.Get(ctx, id)
}

func (s *PostService) List(ctx context.Context, search string) ([]types.Post, error) {
	return s.repo.List(ctx, search)
}

func (s *PostService) ListByUser(ctx context.Context, userID int) ([]types.Post, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create stores a new post owned by userID.
func (s *PostService) Create(ctx context.Context, userID int, upsert PostUpsert) (types.Post, error) {
	categories := upsert.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}

	post := types.Post{
		Title:       upsert.Title,
		Description: upsert.Description,
		Photo:       s.resolvePhoto(upsert.Photo),
		UserID:      userID,
		Categories:  categories,
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		return types.Post{}, err
	}

	s.events.Publish(ctx, EventPostCreated, map[string]int{
		"post_id": created.ID,
		"user_id": userID,
	})
	return created, nil
}

// Update applies changes to a post. Only the owner may update it.
// The check and the write are separate statements; two concurrent
// updates interleave last-write-wins.
func (s *PostService) Update(ctx context.Context, userID, id int, upsert PostUpsert) (types.Post, error) {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Post{}, err
	}
	if post.UserID != userID {
		return types.Post{}, ErrForbidden
	}

	if upsert.Title != "" {
		post.Title = upsert.Title
	}
	if upsert.Description != "" {
		post.Description = upsert.Description
	}
	if upsert.Photo != "" {
		post.Photo = s.resolvePhoto(upsert.Photo)
	}
	if len(upsert.Categories) > 0 {
		post.Categories = upsert.Categories
	}

	return s.repo.Update(ctx, post)
}

// Delete removes a post. Only the owner may delete it.
func (s *PostService) Delete(ctx context.Context, userID, id int) error {
	post, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

// resolvePhoto turns a bare uploaded filename into the public image
// URL. Upload mechanics live in the storage layer; the post only keeps
// the resulting URL.
func (s *PostService) resolvePhoto(filename string) string {
	if filename == "" {
		return ""
	}
	return s.photoURL + filename
}
