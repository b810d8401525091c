package models

import "github.com/google/uuid"

// WebSocket message types
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// StatusUpdate reports which pipeline stage a generate-blog request has reached.
type StatusUpdate struct {
	Link     string     `json:"link"`
	BlogID   *uuid.UUID `json:"blog_id,omitempty"`
	Step     int        `json:"step"`
	StepName string     `json:"step_name"`
}

// API Error response
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
