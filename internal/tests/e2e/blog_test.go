//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"

	"github.com/bloghub/apiserver/config"
	"github.com/bloghub/apiserver/internal/db"
	"github.com/bloghub/apiserver/internal/server"
	_ "github.com/lib/pq"
)

const (
	serverPort = 18080
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	root, err := repoRoot()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to locate repo root: %v\n", err)
		os.Exit(1)
	}

	if err := dockerCompose(ctx, root, "up", "-d"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start docker compose: %v\n", err)
		os.Exit(1)
	}

	if err := waitForPostgres(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "postgres not ready: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	if err := runMigrations(root); err != nil {
		fmt.Fprintf(os.Stderr, "failed to run migrations: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	srv, err := startServer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start server: %v\n", err)
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	if err := waitForHealth(ctx, baseURL+"/healthz"); err != nil {
		fmt.Fprintf(os.Stderr, "server not healthy: %v\n", err)
		_ = srv.Shutdown()
		_ = dockerCompose(context.Background(), root, "down")
		os.Exit(1)
	}

	code := m.Run()

	_ = srv.Shutdown()
	_ = dockerCompose(context.Background(), root, "down")
	os.Exit(code)
}

func TestBlogLifecycle(t *testing.T) {
	baseURL := fmt.Sprintf("http://localhost:%d", serverPort)
	username := fmt.Sprintf("author_%d", time.Now().UnixNano())
	email := username + "@example.com"
	password := "testpass123!"

	if err := registerUser(t, baseURL, username, email, password); err != nil {
		t.Fatalf("register user: %v", err)
	}
	token, userID, err := loginUser(t, baseURL, email, password)
	if err != nil {
		t.Fatalf("login user: %v", err)
	}

	filename, err := uploadImage(t, baseURL, token)
	if err != nil {
		t.Fatalf("upload image: %v", err)
	}

	post, err := createPost(t, baseURL, token, "Lifecycle Test Post", filename)
	if err != nil {
		t.Fatalf("create post: %v", err)
	}
	if post.UserID != userID {
		t.Fatalf("post owner %d, want %d", post.UserID, userID)
	}
	wantPhoto := fmt.Sprintf("%s/images/%s", baseURL, filename)
	if post.Photo != wantPhoto {
		t.Fatalf("photo url %q, want %q", post.Photo, wantPhoto)
	}

	if err := expectImageServed(t, post.Photo); err != nil {
		t.Fatalf("serve uploaded image: %v", err)
	}

	found, err := searchPosts(t, baseURL, "lifecycle")
	if err != nil {
		t.Fatalf("search posts: %v", err)
	}
	if !containsPost(found, post.ID) {
		t.Fatalf("search must find the created post")
	}

	comment, err := createComment(t, baseURL, token, post.ID, username)
	if err != nil {
		t.Fatalf("create comment: %v", err)
	}
	if comment.PostID != post.ID {
		t.Fatalf("comment post id %d, want %d", comment.PostID, post.ID)
	}

	if err := deleteUser(t, baseURL, token, userID); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	// Account deletion removes the user's posts and comments with it.
	if err := expectPostNotFound(t, baseURL, post.ID); err != nil {
		t.Fatalf("expected post gone after account deletion: %v", err)
	}
	remaining, err := listPostComments(t, baseURL, post.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no comments after account deletion, got %d", len(remaining))
	}
}

type postResponse struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Photo  string `json:"photo"`
	UserID int    `json:"user_id"`
}

type commentResponse struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	PostID int    `json:"post_id"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  struct {
		ID int `json:"id"`
	} `json:"user"`
}

func registerUser(t *testing.T, baseURL, username, email, password string) error {
	t.Helper()

	payload := map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}
	resp, err := postJSON(baseURL+"/api/auth/register", payload, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("register status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func loginUser(t *testing.T, baseURL, email, password string) (string, int, error) {
	t.Helper()

	payload := map[string]string{"email": email, "password": password}
	resp, err := postJSON(baseURL+"/api/auth/login", payload, "")
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("login status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", 0, err
	}
	if parsed.Token == "" {
		return "", 0, fmt.Errorf("missing token in login response")
	}
	return parsed.Token, parsed.User.ID, nil
}

func uploadImage(t *testing.T, baseURL, token string) (string, error) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="img"; filename="cover.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", err
	}
	if _, err := part.Write([]byte("\x89PNG\r\n\x1a\ntest image")); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/upload", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("upload status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed struct {
		Filename string `json:"filename"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", err
	}
	if parsed.Filename == "" {
		return "", fmt.Errorf("missing filename in upload response")
	}
	return parsed.Filename, nil
}

func expectImageServed(t *testing.T, url string) error {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("image status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return fmt.Errorf("image content type %q", ct)
	}
	return nil
}

func createPost(t *testing.T, baseURL, token, title, photo string) (postResponse, error) {
	t.Helper()

	payload := map[string]any{
		"title": title,
		"desc":  "Written end to end against a real stack.",
		"photo": photo,
	}
	resp, err := postJSON(baseURL+"/api/posts/create", payload, token)
	if err != nil {
		return postResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(resp.Body)
		return postResponse{}, fmt.Errorf("create post status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed postResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return postResponse{}, err
	}
	return parsed, nil
}

func searchPosts(t *testing.T, baseURL, query string) ([]postResponse, error) {
	t.Helper()

	resp, err := http.Get(baseURL + "/api/posts?search=" + query)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed []postResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func containsPost(posts []postResponse, id int) bool {
	for _, post := range posts {
		if post.ID == id {
			return true
		}
	}
	return false
}

func createComment(t *testing.T, baseURL, token string, postID int, author string) (commentResponse, error) {
	t.Helper()

	payload := map[string]any{
		"text":   "great read",
		"author": author,
		"postId": postID,
	}
	resp, err := postJSON(baseURL+"/api/comments/create", payload, token)
	if err != nil {
		return commentResponse{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return commentResponse{}, fmt.Errorf("create comment status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return commentResponse{}, err
	}
	return parsed, nil
}

func listPostComments(t *testing.T, baseURL string, postID int) ([]commentResponse, error) {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/api/comments/post/%d", baseURL, postID))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("list comments status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed []commentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

func deleteUser(t *testing.T, baseURL, token string, userID int) error {
	t.Helper()

	req, err := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/api/user/%d", baseURL, userID), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("delete user status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func expectPostNotFound(t *testing.T, baseURL string, id int) error {
	t.Helper()

	resp, err := http.Get(fmt.Sprintf("%s/api/posts/%d", baseURL, id))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("expected 404, got %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func postJSON(url string, payload any, token string) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return http.DefaultClient.Do(req)
}

func waitForPostgres(ctx context.Context) error {
	cfg := config.LoadConfig()
	conn, err := sql.Open("postgres", db.URL(cfg))
	if err != nil {
		return err
	}
	defer conn.Close()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := conn.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("postgres ping timeout: %w", err)
		case <-ticker.C:
		}
	}
}

func waitForHealth(ctx context.Context, url string) error {
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			return fmt.Errorf("health check failed with status")
		case <-ticker.C:
		}
	}
}

func runMigrations(root string) error {
	cfg := config.LoadConfig()
	migrationsPath := filepath.Join(root, "internal", "db", "migrations")
	migrationsURL := "file://" + migrationsPath

	migrator, err := migrate.New(migrationsURL, db.URL(cfg))
	if err != nil {
		return err
	}
	defer func() {
		_, _ = migrator.Close()
	}()

	if err := migrator.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func startServer() (*server.Server, error) {
	_ = os.Setenv("JWT_SECRET", "test-secret")
	_ = os.Setenv("SERVER_PORT", fmt.Sprintf("%d", serverPort))
	_ = os.Setenv("PUBLIC_BASE_URL", fmt.Sprintf("http://localhost:%d", serverPort))
	_ = os.Setenv("DB_HOST", "localhost")
	_ = os.Setenv("DB_PORT", "5432")
	_ = os.Setenv("DB_USER", "bloghub")
	_ = os.Setenv("DB_PASSWORD", "password")
	_ = os.Setenv("DB_NAME", "bloghub_db")
	_ = os.Setenv("DB_USE_SSL", "false")
	_ = os.Setenv("STORAGE_BACKEND", "minio")
	_ = os.Setenv("MINIO_ACCESS_KEY", "minioadmin")
	_ = os.Setenv("MINIO_SECRET_KEY", "minioadmin")
	_ = os.Setenv("MINIO_BUCKET", "bloghub-images")
	_ = os.Setenv("MQ_BACKEND", "disabled")

	cfg := config.LoadConfig()
	log := logrus.New()
	log.SetOutput(io.Discard)

	srv, err := server.New(context.Background(), cfg, log)
	if err != nil {
		return nil, err
	}

	go func() {
		_ = srv.Start()
	}()

	return srv, nil
}

func dockerCompose(ctx context.Context, root string, args ...string) error {
	composeFile := filepath.Join(root, "development", "docker-compose.yml")
	baseArgs := append([]string{"compose", "-f", composeFile}, args...)
	cmd := exec.CommandContext(ctx, "docker", baseArgs...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

func repoRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found")
		}
		dir = parent
	}
}
