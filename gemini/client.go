// Package gemini sends a cheque image to a Gemini model and returns the text the model
// answered with. The answer is not interpreted here.
package gemini

import (
	"chequeai/config"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"google.golang.org/genai"
)

var (
	ErrNoAPIKey      = errors.New("gemini API key is not configured")
	ErrEmptyResponse = errors.New("gemini returned no text")
)

type Client struct {
	Endpoint string
	Version  string
	Model    string
	APIKey   string
	HTTP     *http.Client
}

// NewClient creates a client from the GEMINI_* configuration
func NewClient() *Client {
	return &Client{
		Endpoint: config.GEMINI_ENDPOINT,
		Version:  config.GEMINI_VERSION,
		Model:    config.GEMINI_MODEL,
		APIKey:   config.GEMINI_API_KEY,
		HTTP:     &http.Client{Timeout: config.GEMINI_TIMEOUT},
	}
}

func (c *Client) newGenAI(ctx context.Context) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     c.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.HTTP,
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    c.Endpoint,
			APIVersion: c.Version,
		},
	})
}

// Extract asks the model to read the cheque in image and returns its raw answer.
// A single request is made.
func (c *Client) Extract(ctx context.Context, image []byte, mimeType string) (string, error) {
	if c.APIKey == "" {
		return "", ErrNoAPIKey
	}
	client, err := c.newGenAI(ctx)
	if err != nil {
		return "", fmt.Errorf("error creating gemini client: %w", err)
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(Prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	resp, err := client.Models.GenerateContent(ctx, c.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("error calling gemini: %w", err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: blocked (%s)", ErrEmptyResponse, resp.PromptFeedback.BlockReason)
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func asAPIError(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return *apiErrPtr, true
	}
	return apiErr, false
}

// UserMessage turns an extraction error into the message shown to the user
func UserMessage(err error) string {
	var urlErr *url.Error
	var netErr interface{ Timeout() bool }
	if errors.Is(err, ErrNoAPIKey) {
		return "AI service is not configured. Please set GEMINI_API_KEY."
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timeout. Please try again with a smaller image."
	}
	if apiErr, ok := asAPIError(err); ok {
		switch {
		case apiErr.Code == http.StatusTooManyRequests, apiErr.Status == "RESOURCE_EXHAUSTED":
			return "API quota exceeded. Please try again later."
		case apiErr.Code == http.StatusUnauthorized, apiErr.Code == http.StatusForbidden,
			strings.Contains(strings.ToLower(apiErr.Message), "api key"):
			return "Invalid API key. Please check your Gemini API configuration."
		}
		if apiErr.Message != "" {
			return "Error processing image with AI: " + apiErr.Message
		}
		return fmt.Sprintf("Error processing image with AI: status %d", apiErr.Code)
	}
	switch {
	case errors.Is(err, ErrEmptyResponse):
		return "AI could not read the image. Please try another image."
	case errors.As(err, &urlErr):
		return "Network error. Please check your internet connection and try again."
	}
	return "Error processing image with AI: " + err.Error()
}
