package services

import (
	"context"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ContentGenerator writes a blog article from a video's title and transcript.
type ContentGenerator interface {
	GenerateBlog(ctx context.Context, title, transcript string) (string, error)
}

type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiService(ctx context.Context, apiKey, modelName string) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Close() {
	s.client.Close()
}

// GenerateBlog returns the model's article verbatim. Markdown structure is
// requested by the prompt but not checked.
func (s *GeminiService) GenerateBlog(ctx context.Context, title, transcript string) (string, error) {
	resp, err := s.model.GenerateContent(ctx, genai.Text(buildBlogPrompt(title, transcript)))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			log.Printf("WARNING: Gemini candidate %d stopped due to %s", i, cand.FinishReason)
		}
	}

	content := strings.TrimSpace(extractText(resp))
	if content == "" {
		return "", fmt.Errorf("Gemini returned empty content")
	}
	return content, nil
}

func buildBlogPrompt(title, transcript string) string {
	var b strings.Builder

	b.WriteString("You are an experienced blog writer. Generate a blog post based on the following transcript of a YouTube video.\n\n")
	fmt.Fprintf(&b, "Video title: %s\n\n", title)
	b.WriteString(`Write the article in Markdown with this structure:
1. A title line starting with "# ".
2. An introduction paragraph that tells the reader what the video covers.
3. A body split into sections, each with a "## " heading and well-formed paragraphs.
4. A conclusion section that summarises the key takeaways.

Do not describe it as a transcript or mention the video's captions. Write in a clear, engaging tone and keep the facts to what the speaker actually says.

`)
	b.WriteString("TRANSCRIPT START\n")
	b.WriteString(transcript)
	b.WriteString("\nTRANSCRIPT END\n")

	return b.String()
}

// Transcribe uploads the audio through the Gemini File API and asks the model
// for a verbatim transcript. The remote file is always deleted.
func (s *GeminiService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(filepath.Ext(audioPath))
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}

	file, err := s.client.UploadFile(ctx, "", f, &genai.UploadFileOptions{
		DisplayName: filepath.Base(audioPath),
		MIMEType:    mimeType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to Gemini: %w", err)
	}

	defer s.client.DeleteFile(context.Background(), file.Name)

	for i := 0; i < 30 && file.State != genai.FileStateActive; i++ {
		if file.State == genai.FileStateFailed {
			return "", fmt.Errorf("%w: Gemini failed to process uploaded audio file", ErrTranscriptionFailed)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}

		file, err = s.client.GetFile(ctx, file.Name)
		if err != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", err)
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("audio file did not become active in time")
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations."

	resp, err := s.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: mimeType, URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("%w: Gemini returned empty transcription", ErrTranscriptionFailed)
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
