package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"blogsmith-backend/internal/models"
	"blogsmith-backend/internal/repository"
)

type TitleFetcher interface {
	FetchTitle(ctx context.Context, videoURL string) (string, error)
}

type AudioFetcher interface {
	DownloadAudio(ctx context.Context, videoURL string) (string, error)
}

// BlogPostStore is implemented by repository.BlogPostRepo.
type BlogPostStore interface {
	Create(ctx context.Context, p *models.BlogPost) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BlogPost, error)
	GetByUserAndLink(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlogPost, error)
}

// ProgressPublisher delivers pipeline progress to the user's live connections.
// Publishing is best effort.
type ProgressPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage)
}

// RedisProgressPublisher fans messages out on the user_updates:<user_id>
// channel that the WebSocket hub subscribes to.
type RedisProgressPublisher struct {
	redis *redis.Client
}

func NewRedisProgressPublisher(client *redis.Client) *RedisProgressPublisher {
	return &RedisProgressPublisher{redis: client}
}

func (p *RedisProgressPublisher) Publish(ctx context.Context, userID uuid.UUID, msg models.WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := p.redis.Publish(ctx, UserUpdatesChannel(userID), string(data)).Err(); err != nil {
		log.Printf("failed to publish progress for user %s: %v", userID, err)
	}
}

// UserUpdatesChannel is the Redis pub/sub channel for a user's live updates.
func UserUpdatesChannel(userID uuid.UUID) string {
	return fmt.Sprintf("user_updates:%s", userID.String())
}

// Pipeline steps reported in status updates.
const (
	stepTitle = iota + 1
	stepAudio
	stepTranscript
	stepGenerate
	stepSave
)

var stepNames = map[int]string{
	stepTitle:      "Fetching Title",
	stepAudio:      "Downloading Audio",
	stepTranscript: "Transcribing",
	stepGenerate:   "Writing Blog Post",
	stepSave:       "Saving",
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, uuid.UUID, models.WSMessage) {}

// BlogService turns a YouTube link into a stored blog post, one request at a
// time, and serves the owner's posts back.
type BlogService struct {
	titles      TitleFetcher
	audio       AudioFetcher
	transcriber Transcriber
	generator   ContentGenerator
	posts       BlogPostStore
	progress    ProgressPublisher

	removeFile func(string) error
}

func NewBlogService(
	titles TitleFetcher,
	audio AudioFetcher,
	transcriber Transcriber,
	generator ContentGenerator,
	posts BlogPostStore,
	progress ProgressPublisher,
) *BlogService {
	if progress == nil {
		progress = noopPublisher{}
	}
	return &BlogService{
		titles:      titles,
		audio:       audio,
		transcriber: transcriber,
		generator:   generator,
		posts:       posts,
		progress:    progress,
		removeFile:  os.Remove,
	}
}

// Generate runs the pipeline for link on behalf of userID. A link the user has
// already turned into a post returns the stored post without calling any
// external service.
func (s *BlogService) Generate(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error) {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil, &ValidationError{Fields: map[string]string{"link": "YouTube link is required"}}
	}
	if !ValidateYouTubeURL(link) {
		return nil, &ValidationError{Fields: map[string]string{"link": "Invalid YouTube link"}}
	}

	existing, err := s.posts.GetByUserAndLink(ctx, userID, link)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, &PersistenceError{Err: err}
	}

	post, err := s.run(ctx, userID, link)
	if err != nil {
		log.Printf("Blog generation failed for user %s (%s): %v", userID, link, err)
		s.progress.Publish(ctx, userID, models.WSMessage{
			Type:    "blog_failed",
			Payload: models.StatusUpdate{Link: link, StepName: err.Error()},
		})
		return nil, err
	}

	s.progress.Publish(ctx, userID, models.WSMessage{
		Type:    "blog_completed",
		Payload: models.StatusUpdate{Link: link, BlogID: &post.ID, Step: stepSave, StepName: "Done"},
	})
	return post, nil
}

func (s *BlogService) run(ctx context.Context, userID uuid.UUID, link string) (*models.BlogPost, error) {
	s.report(ctx, userID, link, stepTitle)
	title, err := s.titles.FetchTitle(ctx, link)
	if err != nil {
		return nil, &RetrievalError{Stage: StageTitle, Err: err}
	}

	transcript, err := s.transcribe(ctx, userID, link)
	if err != nil {
		return nil, err
	}

	s.report(ctx, userID, link, stepGenerate)
	content, err := s.generator.GenerateBlog(ctx, title, transcript)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	s.report(ctx, userID, link, stepSave)
	post := &models.BlogPost{
		UserID:       userID,
		YouTubeTitle: title,
		YouTubeLink:  link,
		Content:      content,
	}

	err = s.posts.Create(ctx, post)
	if errors.Is(err, repository.ErrDuplicatePost) {
		// A concurrent request for the same link won the insert.
		stored, getErr := s.posts.GetByUserAndLink(ctx, userID, link)
		if getErr != nil {
			return nil, &PersistenceError{Err: getErr}
		}
		return stored, nil
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	return post, nil
}

// transcribe downloads the audio, transcribes it and removes the audio file
// whatever the outcome.
func (s *BlogService) transcribe(ctx context.Context, userID uuid.UUID, link string) (string, error) {
	s.report(ctx, userID, link, stepAudio)
	audioPath, err := s.audio.DownloadAudio(ctx, link)
	if err != nil {
		return "", &RetrievalError{Stage: StageAudio, Err: err}
	}

	s.report(ctx, userID, link, stepTranscript)
	transcript, err := s.transcriber.Transcribe(ctx, audioPath)

	if rmErr := s.removeFile(audioPath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		log.Printf("failed to remove audio file %s: %v", audioPath, rmErr)
	}

	if err != nil {
		return "", &RetrievalError{Stage: StageTranscript, Err: err}
	}
	if strings.TrimSpace(transcript) == "" {
		return "", &RetrievalError{Stage: StageTranscript, Err: errors.New("empty transcript")}
	}
	return transcript, nil
}

func (s *BlogService) report(ctx context.Context, userID uuid.UUID, link string, step int) {
	s.progress.Publish(ctx, userID, models.WSMessage{
		Type:    "status_update",
		Payload: models.StatusUpdate{Link: link, Step: step, StepName: stepNames[step]},
	})
}

// List returns the user's posts, newest first.
func (s *BlogService) List(ctx context.Context, userID uuid.UUID) ([]*models.BlogPost, error) {
	posts, err := s.posts.ListByUser(ctx, userID)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	return posts, nil
}

// Get returns a post only to its owner.
func (s *BlogService) Get(ctx context.Context, userID, postID uuid.UUID) (*models.BlogPost, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &NotFoundError{Message: "Blog post not found"}
	}
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}
	if post.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this blog post"}
	}
	return post, nil
}
