package handlers

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/bloghub/apiserver/internal/auth"
	"github.com/bloghub/apiserver/internal/services"
	"github.com/bloghub/apiserver/internal/store"
	"github.com/bloghub/apiserver/types"
	"github.com/go-chi/chi/v5"
)

const testJWTSecret = "handler-test-secret"

type fakeUserRepo struct {
	users  map[int]types.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int]types.User), nextID: 1}
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (types.User, error) {
	user, ok := r.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (types.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (types.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *fakeUserRepo) Create(_ context.Context, user types.User) (types.User, error) {
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user types.User) (types.User, error) {
	if _, ok := r.users[user.ID]; !ok {
		return types.User{}, store.ErrNotFound
	}
	r.users[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.users[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type fakePostRepo struct {
	posts  map[int]types.Post
	nextID int
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: make(map[int]types.Post), nextID: 1}
}

func (r *fakePostRepo) Get(_ context.Context, id int) (types.Post, error) {
	post, ok := r.posts[id]
	if !ok {
		return types.Post{}, store.ErrNotFound
	}
	return post, nil
}

func (r *fakePostRepo) List(_ context.Context, search string) ([]types.Post, error) {
	out := make([]types.Post, 0, len(r.posts))
	for _, post := range r.posts {
		out = append(out, post)
	}
	return out, nil
}

func (r *fakePostRepo) ListByUser(_ context.Context, userID int) ([]types.Post, error) {
	out := make([]types.Post, 0)
	for _, post := range r.posts {
		if post.UserID == userID {
			out = append(out, post)
		}
	}
	return out, nil
}

func (r *fakePostRepo) Create(_ context.Context, post types.Post) (types.Post, error) {
	post.ID = r.nextID
	r.nextID++
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Update(_ context.Context, post types.Post) (types.Post, error) {
	if _, ok := r.posts[post.ID]; !ok {
		return types.Post{}, store.ErrNotFound
	}
	r.posts[post.ID] = post
	return post, nil
}

func (r *fakePostRepo) Delete(_ context.Context, id int) error {
	if _, ok := r.posts[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

// testEnv wires handlers over in-memory repositories the way the
// server package wires them over Postgres.
type testEnv struct {
	router    *chi.Mux
	tokens    *auth.TokenService
	userRepo  *fakeUserRepo
	postRepo  *fakePostRepo
	userSvc   *services.UserService
	postSvc   *services.PostService
	serverURL string
}

func newTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	userRepo := newFakeUserRepo()
	postRepo := newFakePostRepo()
	userSvc := services.NewUserService(userRepo, nil)
	postSvc := services.NewPostService(postRepo, nil, "http://localhost:8000")
	tokens := auth.NewTokenService(testJWTSecret)
	authMiddleware := RequireAuth(tokens)

	router := chi.NewRouter()
	router.Route("/api/auth", func(r chi.Router) {
		AuthRouter(r, userSvc, tokens)
	})
	router.Route("/api/user", func(r chi.Router) {
		UserRouter(r, userSvc, authMiddleware)
	})
	router.Route("/api/posts", func(r chi.Router) {
		PostRouter(r, postSvc, authMiddleware)
	})

	server := httptest.NewServer(router)
	env := &testEnv{
		router:    router,
		tokens:    tokens,
		userRepo:  userRepo,
		postRepo:  postRepo,
		userSvc:   userSvc,
		postSvc:   postSvc,
		serverURL: server.URL,
	}
	return env, server.Close
}

func (env *testEnv) seedUser(t *testing.T, username, email, password string) types.User {
	t.Helper()
	hashed, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user, err := env.userRepo.Create(context.Background(), types.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashed,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func (env *testEnv) tokenFor(t *testing.T, user types.User) string {
	t.Helper()
	token, err := env.tokens.Issue(user)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}
