package services

import "fmt"

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

type RateLimitError struct{ Message string }

func (e *RateLimitError) Error() string { return e.Message }

// Pipeline stages reported by RetrievalError.
const (
	StageTitle      = "title"
	StageAudio      = "audio"
	StageTranscript = "transcript"
)

// RetrievalError means the video's title, audio or transcript could not be
// obtained.
type RetrievalError struct {
	Stage string
	Err   error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("%s retrieval failed: %v", e.Stage, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

type GenerationError struct{ Err error }

func (e *GenerationError) Error() string { return fmt.Sprintf("content generation failed: %v", e.Err) }

func (e *GenerationError) Unwrap() error { return e.Err }

type PersistenceError struct{ Err error }

func (e *PersistenceError) Error() string { return fmt.Sprintf("persistence failed: %v", e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }
