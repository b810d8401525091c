package models

import (
	"time"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type BlogPost struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"user_id"`
	YouTubeTitle string    `json:"youtube_title"`
	YouTubeLink  string    `json:"youtube_link"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
}

type GenerateBlogRequest struct {
	Link string `json:"link"`
}

type GenerateBlogResponse struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	BlogID  uuid.UUID `json:"blog_id"`
}

func (b GenerateBlogRequest) Validate() error {
	return v.ValidateStruct(&b,
		v.Field(&b.Link, v.Required.Error("YouTube link is required")),
	)
}
