package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"blogsmith-backend/internal/models"
	"blogsmith-backend/internal/services"
)

type authService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, *models.AuthTokens, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthTokens, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthTokens, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthHandler struct {
	authService authService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	user, tokens, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":   user,
		"tokens": tokens,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tokens, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	tokens, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return errorRespWithFields(code, message, nil, r)
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

var retrievalMessages = map[string]string{
	services.StageTitle:      "Could not retrieve video title.",
	services.StageAudio:      "Could not download audio.",
	services.StageTranscript: "Could not retrieve transcript.",
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *services.ValidationError
		conflictErr     *services.ConflictError
		notFoundErr     *services.NotFoundError
		unauthorizedErr *services.UnauthorizedError
		forbiddenErr    *services.ForbiddenError
		rateLimitErr    *services.RateLimitError
		retrievalErr    *services.RetrievalError
		generationErr   *services.GenerationError
		persistenceErr  *services.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Invalid data.", validationErr.Fields, r))
	case errors.As(err, &conflictErr):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", conflictErr.Message, r))
	case errors.As(err, &notFoundErr):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", notFoundErr.Message, r))
	case errors.As(err, &unauthorizedErr):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", unauthorizedErr.Message, r))
	case errors.As(err, &forbiddenErr):
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", forbiddenErr.Message, r))
	case errors.As(err, &rateLimitErr):
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", rateLimitErr.Message, r))
	case errors.As(err, &retrievalErr):
		msg, ok := retrievalMessages[retrievalErr.Stage]
		if !ok {
			msg = "Could not retrieve video data."
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("RETRIEVAL_FAILED", msg, r))
	case errors.As(err, &generationErr):
		writeJSON(w, http.StatusInternalServerError, errorResp("GENERATION_FAILED", "Could not generate blog content.", r))
	case errors.As(err, &persistenceErr):
		writeJSON(w, http.StatusInternalServerError, errorResp("PERSISTENCE_FAILED", "Could not save blog post.", r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
