package services

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	yt "github.com/kkdai/youtube/v2"
)

// UnknownTitle is used when YouTube reports an empty title.
const UnknownTitle = "Unknown Title"

var youtubeURLRegex = regexp.MustCompile(
	`^(?:https?://)?(?:(?:www\.|m\.)?youtube\.com/(?:watch\?(?:[^#]*&)?v=|embed/|shorts/|v/)|youtu\.be/)([A-Za-z0-9_-]+)(?:[?&#/].*)?$`,
)

// ValidateYouTubeURL reports whether raw is a watch, short, embed, shorts or
// mobile YouTube link. The scheme is optional.
func ValidateYouTubeURL(raw string) bool {
	return youtubeURLRegex.MatchString(strings.TrimSpace(raw))
}

// ExtractVideoID returns the video ID of a valid YouTube link, or "".
func ExtractVideoID(raw string) string {
	m := youtubeURLRegex.FindStringSubmatch(strings.TrimSpace(raw))
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// videoClient is the subset of the kkdai client used here.
type videoClient interface {
	GetVideoContext(ctx context.Context, url string) (*yt.Video, error)
	GetStreamContext(ctx context.Context, video *yt.Video, format *yt.Format) (io.ReadCloser, int64, error)
}

type YouTubeService struct {
	client videoClient
}

func NewYouTubeService() *YouTubeService {
	return &YouTubeService{client: &yt.Client{}}
}

// FetchTitle reads only the video metadata. Nothing is downloaded.
func (s *YouTubeService) FetchTitle(ctx context.Context, videoURL string) (string, error) {
	video, err := s.client.GetVideoContext(ctx, strings.TrimSpace(videoURL))
	if err != nil {
		return "", fmt.Errorf("failed to fetch YouTube video metadata: %w", err)
	}

	title := strings.TrimSpace(video.Title)
	if title == "" {
		return UnknownTitle, nil
	}
	return title, nil
}
