package services

import (
	"context"

	"github.com/bloghub/apiserver/internal/auth"
	"github.com/bloghub/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
	Delete(ctx context.Context, id int) error
}

// UserUpdate carries the mutable profile fields. Empty fields are left
// unchanged; a non-empty Password is re-hashed before storing.
type UserUpdate struct {
	ID       int
	Username string
	Email    string
	Password string
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo   UserRepository
	events *EventPublisher
}

func NewUserService(repo UserRepository, events *EventPublisher) *UserService {
	return &UserService{repo: repo, events: events}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// Update applies profile changes. Only the user themself may update
// their account.
func (s *UserService) Update(ctx context.Context, requesterID int, update UserUpdate) (types.User, error) {
	if update.ID != requesterID {
		return types.User{}, ErrForbidden
	}

	user, err := s.repo.GetByID(ctx, update.ID)
	if err != nil {
		return types.User{}, err
	}

	if update.Username != "" {
		user.Username = update.Username
	}
	if update.Email != "" {
		user.Email = update.Email
	}
	if update.Password != "" {
		hashed, err := auth.HashPassword(update.Password)
		if err != nil {
			return types.User{}, err
		}
		user.PasswordHash = hashed
	}

	return s.repo.Update(ctx, user)
}

// Delete removes a user's account together with their posts and
// comments. Only the user themself may delete their account.
func (s *UserService) Delete(ctx context.Context, requesterID, id int) error {
	if id != requesterID {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.events.Publish(ctx, EventUserDeleted, map[string]int{"user_id": id})
	return nil
}
