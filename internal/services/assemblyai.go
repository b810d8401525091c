package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrTranscriptionFailed is returned when the speech-to-text service reports
// that it could not transcribe the audio.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Transcriber turns a local audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

type assemblyAIUpload struct {
	UploadURL string `json:"upload_url"`
}

type assemblyAITranscript struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// AssemblyAIService talks to the AssemblyAI v2 REST API: upload the file,
// request a transcript, then poll until it settles.
type AssemblyAIService struct {
	client       *resty.Client
	pollInterval time.Duration
}

func NewAssemblyAIService(apiKey, baseURL string, pollInterval time.Duration) *AssemblyAIService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Authorization", apiKey).
		SetTimeout(2 * time.Minute)

	return &AssemblyAIService{client: client, pollInterval: pollInterval}
}

func (s *AssemblyAIService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	uploadURL, err := s.upload(ctx, audioPath)
	if err != nil {
		return "", err
	}

	var created assemblyAITranscript
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{"audio_url": uploadURL}).
		SetResult(&created).
		Post("/v2/transcript")
	if err != nil {
		return "", fmt.Errorf("failed to request transcript: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("transcript request rejected: %s: %s", resp.Status(), resp.String())
	}
	if created.ID == "" {
		return "", fmt.Errorf("transcript request returned no id")
	}

	return s.poll(ctx, created.ID)
}

func (s *AssemblyAIService) upload(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	var uploaded assemblyAIUpload
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/octet-stream").
		SetBody(f).
		SetResult(&uploaded).
		Post("/v2/upload")
	if err != nil {
		return "", fmt.Errorf("failed to upload audio: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("audio upload rejected: %s: %s", resp.Status(), resp.String())
	}
	if uploaded.UploadURL == "" {
		return "", fmt.Errorf("audio upload returned no url")
	}

	return uploaded.UploadURL, nil
}

func (s *AssemblyAIService) poll(ctx context.Context, id string) (string, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		var t assemblyAITranscript
		resp, err := s.client.R().
			SetContext(ctx).
			SetPathParam("id", id).
			SetResult(&t).
			Get("/v2/transcript/{id}")
		if err != nil {
			return "", fmt.Errorf("failed to poll transcript %s: %w", id, err)
		}
		if resp.IsError() {
			return "", fmt.Errorf("transcript poll rejected: %s: %s", resp.Status(), resp.String())
		}

		switch t.Status {
		case "completed":
			text := strings.TrimSpace(t.Text)
			if text == "" {
				return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
			}
			return text, nil
		case "error":
			return "", fmt.Errorf("%w: %s", ErrTranscriptionFailed, t.Error)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}
