// Package llm holds the two interchangeable AI backends and the start-up
// selection between them.
//
// OpenAI is the primary provider; Gemini is the secondary. The choice is made
// once from the shape of the configured credential and never changes for the
// life of the process.
package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

type Kind string

const (
	KindOpenAI Kind = "openai"
	KindGemini Kind = "gemini"
)

// maxErrorBody bounds how much of an error response is kept in the error message.
const maxErrorBody = 64 * 1024

// Select picks the provider for a credential. OpenAI secret keys start with "sk-";
// anything else is treated as a Gemini key.
func Select(apiKey string) Kind {
	if strings.HasPrefix(strings.TrimSpace(apiKey), "sk-") {
		return KindOpenAI
	}
	return KindGemini
}

// Request is one text-generation call.
type Request struct {
	System string
	Prompt string
	// JSON asks the backend for a JSON object. Only OpenAI can enforce it.
	JSON bool
}

// Client is a text-generation backend.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (string, error)
}

type Options struct {
	APIKey            string
	OpenAIBaseURL     string
	ChatModel         string
	TranscribeModel   string
	GeminiBaseURL     string
	GeminiModel       string
	Timeout           time.Duration
	FileActiveTimeout time.Duration
}

// APIError is a non-2xx response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *APIError) HTTPStatusCode() int { return e.StatusCode }

func newAPIError(provider string, status int, body io.Reader) *APIError {
	b, _ := io.ReadAll(io.LimitReader(body, maxErrorBody))
	return &APIError{Provider: provider, StatusCode: status, Body: strings.TrimSpace(string(b))}
}
