package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"blogsmith-backend/internal/middleware"
	"blogsmith-backend/internal/models"
	"blogsmith-backend/internal/services"
)

type blogService interface {
	Generate(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error)
	List(ctx context.Context, userID uuid.UUID) ([]*models.BlogPost, error)
	Get(ctx context.Context, userID, postID uuid.UUID) (*models.BlogPost, error)
}

type BlogHandler struct {
	blogService blogService
}

func NewBlogHandler(blogService *services.BlogService) *BlogHandler {
	return &BlogHandler{blogService: blogService}
}

// Generate runs the whole pipeline inside the request and answers with the
// finished post.
func (h *BlogHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.GenerateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid data.", r))
		return
	}

	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid data.",
			map[string]string{"link": "YouTube link is required"}, r))
		return
	}

	post, err := h.blogService.Generate(r.Context(), userID, req.Link)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.GenerateBlogResponse{
		Title:   post.YouTubeTitle,
		Content: post.Content,
		BlogID:  post.ID,
	})
}

func (h *BlogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	posts, err := h.blogService.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"blogs": posts,
		"total": len(posts),
	})
}

func (h *BlogHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	postID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid blog ID", r))
		return
	}

	post, err := h.blogService.Get(r.Context(), userID, postID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, post)
}
