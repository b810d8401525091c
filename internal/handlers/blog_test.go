package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/models"
	"blogsmith-backend/internal/repository"
	"blogsmith-backend/internal/services"
)

type stubPostRepo struct {
	mu    sync.Mutex
	posts []*models.BlogPost
}

func (s *stubPostRepo) Create(ctx context.Context, p *models.BlogPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.posts {
		if existing.UserID == p.UserID && existing.YouTubeLink == p.YouTubeLink {
			return repository.ErrDuplicatePost
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	s.posts = append(s.posts, &cp)
	return nil
}

func (s *stubPostRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubPostRepo) GetByUserAndLink(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.posts {
		if p.UserID == userID && p.YouTubeLink == link {
			cp := *p
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubPostRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlogPost, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.BlogPost{}
	for i := len(s.posts) - 1; i >= 0; i-- {
		if s.posts[i].UserID == userID {
			cp := *s.posts[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubPostRepo) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}

type stubVideo struct {
	dir           string
	transcript    string
	transcribeErr error
}

func (s *stubVideo) FetchTitle(ctx context.Context, url string) (string, error) {
	return "Learning Go", nil
}

func (s *stubVideo) DownloadAudio(ctx context.Context, url string) (string, error) {
	path := filepath.Join(s.dir, "Learning_Go.mp3")
	return path, os.WriteFile(path, []byte("mp3"), 0o644)
}

func (s *stubVideo) Transcribe(ctx context.Context, path string) (string, error) {
	return s.transcript, s.transcribeErr
}

func (s *stubVideo) GenerateBlog(ctx context.Context, title, transcript string) (string, error) {
	return "# " + title + "\n\n" + transcript, nil
}

func newTestBlogHandler(t *testing.T) (*BlogHandler, *stubPostRepo, *stubVideo) {
	repo := &stubPostRepo{}
	video := &stubVideo{dir: t.TempDir(), transcript: "channels and goroutines"}
	svc := services.NewBlogService(video, video, video, video, repo, nil)
	return &BlogHandler{blogService: svc}, repo, video
}

func generateRequest(t *testing.T, h *BlogHandler, userID uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/blogs/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))

	rr := httptest.NewRecorder()
	h.Generate(rr, req)
	return rr
}

func TestBlogHandler_Generate_Success(t *testing.T) {
	h, repo, video := newTestBlogHandler(t)
	userID := uuid.New()

	rr := generateRequest(t, h, userID, `{"link": "https://www.youtube.com/watch?v=abc123"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	var resp models.GenerateBlogResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title == "" || resp.Content == "" {
		t.Fatalf("expected non-empty title and content, got %+v", resp)
	}
	if repo.count() != 1 {
		t.Fatalf("expected exactly one stored post, got %d", repo.count())
	}
	if repo.posts[0].UserID != userID {
		t.Fatalf("stored post should belong to the caller")
	}

	entries, _ := os.ReadDir(video.dir)
	if len(entries) != 0 {
		t.Fatalf("expected audio file to be removed, found %d files", len(entries))
	}
}

func TestBlogHandler_Generate_InvalidLink(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not a url", `{"link": "not-a-url"}`},
		{"missing link", `{}`},
		{"blank link", `{"link": "   "}`},
		{"malformed json", `{"link": `},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h, repo, _ := newTestBlogHandler(t)

			rr := generateRequest(t, h, uuid.New(), tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
			if repo.count() != 0 {
				t.Fatalf("no post should be created")
			}

			var resp models.ErrorResponse
			json.NewDecoder(rr.Body).Decode(&resp)
			if resp.Error.Code != "VALIDATION_ERROR" {
				t.Fatalf("expected VALIDATION_ERROR, got %q", resp.Error.Code)
			}
		})
	}
}

func TestBlogHandler_Generate_Repeated(t *testing.T) {
	h, repo, _ := newTestBlogHandler(t)
	userID := uuid.New()
	body := `{"link": "https://www.youtube.com/watch?v=abc123"}`

	first := generateRequest(t, h, userID, body)
	second := generateRequest(t, h, userID, body)

	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("expected both calls to succeed, got %d and %d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("expected identical responses:\n%s\n%s", first.Body.String(), second.Body.String())
	}
	if repo.count() != 1 {
		t.Fatalf("expected post count to stay at 1, got %d", repo.count())
	}
}

func TestBlogHandler_Generate_TranscriberFailure(t *testing.T) {
	h, repo, video := newTestBlogHandler(t)
	video.transcribeErr = errors.New("transcription failed: audio unreadable")

	rr := generateRequest(t, h, uuid.New(), `{"link": "https://youtu.be/abc123"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}

	var resp models.ErrorResponse
	json.NewDecoder(rr.Body).Decode(&resp)
	if resp.Error.Code != "RETRIEVAL_FAILED" || resp.Error.Message != "Could not retrieve transcript." {
		t.Fatalf("unexpected error body: %+v", resp.Error)
	}
	if repo.count() != 0 {
		t.Fatalf("no post should be created when transcription fails")
	}
}

func getRequest(h *BlogHandler, userID uuid.UUID, id string) *httptest.ResponseRecorder {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/blogs/"+id, nil)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))

	rr := httptest.NewRecorder()
	h.Get(rr, req)
	return rr
}

func TestBlogHandler_Get_Ownership(t *testing.T) {
	h, repo, _ := newTestBlogHandler(t)
	ownerID := uuid.New()
	otherID := uuid.New()

	generateRequest(t, h, ownerID, `{"link": "https://youtu.be/abc123"}`)
	postID := repo.posts[0].ID.String()

	rr := getRequest(h, ownerID, postID)
	if rr.Code != http.StatusOK {
		t.Fatalf("owner should see the post, got %d", rr.Code)
	}

	rr = getRequest(h, otherID, postID)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
	if bytes.Contains(rr.Body.Bytes(), []byte("channels and goroutines")) {
		t.Fatalf("forbidden response must not leak post content")
	}
}

func TestBlogHandler_Get_NotFoundAndBadID(t *testing.T) {
	h, _, _ := newTestBlogHandler(t)

	if rr := getRequest(h, uuid.New(), uuid.New().String()); rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if rr := getRequest(h, uuid.New(), "not-a-uuid"); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestBlogHandler_List(t *testing.T) {
	h, _, _ := newTestBlogHandler(t)
	userID := uuid.New()

	generateRequest(t, h, userID, `{"link": "https://youtu.be/first1"}`)
	generateRequest(t, h, userID, `{"link": "https://youtu.be/second2"}`)
	generateRequest(t, h, uuid.New(), `{"link": "https://youtu.be/other3"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/blogs", nil)
	req = req.WithContext(context.WithValue(req.Context(), middleware.UserIDKey, userID))
	rr := httptest.NewRecorder()
	h.List(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Blogs []models.BlogPost `json:"blogs"`
		Total int               `json:"total"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Total != 2 || len(resp.Blogs) != 2 {
		t.Fatalf("expected 2 posts for the user, got %d", resp.Total)
	}
	if resp.Blogs[0].YouTubeLink != "https://youtu.be/second2" {
		t.Fatalf("expected newest post first, got %s", resp.Blogs[0].YouTubeLink)
	}
}
