package services

import (
	"context"

	"github.com/bloghub/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	Get(ctx context.Context, id int) (types.Comment, error)
	ListByPost(ctx context.Context, postID int) ([]types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Update(ctx context.Context, comment types.Comment) (types.Comment, error)
	Delete(ctx context.Context, id int) error
}

// CommentService encapsulates comment use-cases.
//
// Unlike posts, comment update and delete carry no ownership check:
// any authenticated user may mutate any comment. This mirrors the
// long-standing observed behavior of the API.
// TODO: decide with product whether comment mutation should be
// restricted to the comment's author, then thread the requester id
// through Update/Delete the way PostService does.
type CommentService struct {
	repo   CommentRepository
	events *EventPublisher
}

func NewCommentService(repo CommentRepository, events *EventPublisher) *CommentService {
	return &CommentService{repo: repo, events: events}
}

func (s *CommentService) ListByPost(ctx context.Context, postID int) ([]types.Comment, error) {
	return s.repo.ListByPost(ctx, postID)
}

// Create stores a new comment authored by userID. The referenced post
// is not checked for existence before the insert.
func (s *CommentService) Create(ctx context.Context, userID int, comment types.Comment) (types.Comment, error) {
	comment.UserID = userID

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		return types.Comment{}, err
	}

	s.events.Publish(ctx, EventCommentCreated, map[string]int{
		"comment_id": created.ID,
		"post_id":    created.PostID,
		"user_id":    userID,
	})
	return created, nil
}

// Update applies changes to a comment. Empty fields are left unchanged.
func (s *CommentService) Update(ctx context.Context, id int, text, author string) (types.Comment, error) {
	comment, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Comment{}, err
	}

	if text != "" {
		comment.Text = text
	}
	if author != "" {
		comment.Author = author
	}

	return s.repo.Update(ctx, comment)
}

// Delete removes a comment.
func (s *CommentService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}
