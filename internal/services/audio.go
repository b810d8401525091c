package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

const maxFilenameLen = 100

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// SanitizeFilename maps a video title to a name that is safe on any
// filesystem. Only ASCII letters, digits, '_' and '-' survive.
func SanitizeFilename(title string) string {
	name := unsafeFilenameChars.ReplaceAllString(title, "_")
	name = strings.Trim(name, "_")
	if len(name) > maxFilenameLen {
		name = strings.TrimRight(name[:maxFilenameLen], "_")
	}
	if name == "" {
		return "audio"
	}
	return name
}

// Transcoder converts an audio stream into an MP3 file at dst.
type Transcoder interface {
	Transcode(ctx context.Context, src io.Reader, dst string) error
}

// FFmpegTranscoder shells out to the ffmpeg binary, feeding it on stdin.
type FFmpegTranscoder struct {
	Path    string
	Bitrate string
}

func NewFFmpegTranscoder(path, bitrate string) *FFmpegTranscoder {
	return &FFmpegTranscoder{Path: path, Bitrate: bitrate}
}

func (t *FFmpegTranscoder) Transcode(ctx context.Context, src io.Reader, dst string) error {
	cmd := exec.CommandContext(ctx, t.Path,
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-i", "pipe:0",
		"-vn",
		"-codec:a", "libmp3lame",
		"-b:a", t.Bitrate,
		"-f", "mp3",
		dst,
	)
	cmd.Stdin = src

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg error: %w, details: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

type AudioService struct {
	client     videoClient
	transcoder Transcoder
	mediaRoot  string
}

func NewAudioService(transcoder Transcoder, mediaRoot string) *AudioService {
	return &AudioService{
		client:     &yt.Client{},
		transcoder: transcoder,
		mediaRoot:  mediaRoot,
	}
}

// DownloadAudio fetches the best audio stream of videoURL and writes it as an
// MP3 under the media root. The caller owns the returned file and must remove
// it. On error no file is left behind.
func (s *AudioService) DownloadAudio(ctx context.Context, videoURL string) (string, error) {
	video, err := s.client.GetVideoContext(ctx, strings.TrimSpace(videoURL))
	if err != nil {
		return "", fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	format, err := pickAudioFormat(video.Formats)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.mediaRoot, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	out, err := os.CreateTemp(s.mediaRoot, SanitizeFilename(video.Title)+"-*.mp3")
	if err != nil {
		return "", fmt.Errorf("failed to create audio file: %w", err)
	}
	path := out.Name()
	out.Close()

	if err := s.fetchInto(ctx, video, format, path); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			log.Printf("failed to remove partial audio file %s: %v", path, rmErr)
		}
		return "", err
	}

	return path, nil
}

func (s *AudioService) fetchInto(ctx context.Context, video *yt.Video, format *yt.Format, path string) error {
	stream, _, err := s.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return fmt.Errorf("failed to open audio stream: %w", err)
	}
	defer stream.Close()

	if err := s.transcoder.Transcode(ctx, stream, path); err != nil {
		return fmt.Errorf("failed to convert audio: %w", err)
	}
	return nil
}

// pickAudioFormat prefers audio-only formats and, among those, the highest
// bitrate. Muxed formats are used only when no audio-only format exists.
func pickAudioFormat(formats yt.FormatList) (*yt.Format, error) {
	withAudio := formats.WithAudioChannels()
	if len(withAudio) == 0 {
		return nil, fmt.Errorf("no audio formats available")
	}

	var best *yt.Format
	for i := range withAudio {
		f := &withAudio[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	if best != nil {
		return best, nil
	}

	best = &withAudio[0]
	for i := range withAudio {
		if withAudio[i].Bitrate > best.Bitrate {
			best = &withAudio[i]
		}
	}
	return best, nil
}
