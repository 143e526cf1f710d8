package vision

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// Captioner generates text about an image from a natural-language instruction.
// The image data should be the full contents of a JPEG file including the header.
type Captioner interface {
	Caption(ctx context.Context, jpegData []byte, instruction string) (string, error)
}

// GeminiCaptioner implements Captioner against the Gemini API.
type GeminiCaptioner struct {
	client *genai.Client
	model  string
}

// NewGeminiCaptioner builds a Captioner for the given API key and model.
func NewGeminiCaptioner(ctx context.Context, apiKey, model string) (*GeminiCaptioner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai api key must be provided")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiCaptioner{
		client: client,
		model:  model,
	}, nil
}

// Caption sends the image and instruction to the model and returns its text output verbatim.
func (c *GeminiCaptioner) Caption(ctx context.Context, jpegData []byte, instruction string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromBytes(jpegData, "image/jpeg"),
		genai.NewPartFromText(instruction),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("model returned no text")
	}
	return text, nil
}

var _ Captioner = (*GeminiCaptioner)(nil)
