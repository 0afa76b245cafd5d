package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/option"

	"github.com/jonathan/cv-tailor/internal/prompts"
)

// Client is the abstraction the pipeline and keyword extractor depend on.
// It exists so tests can substitute a fake without network access.
type Client interface {
	// Optimize runs one CV optimization call. The system instruction pins
	// the response to RenderCV YAML beginning with the cv: marker; this
	// client does not verify the marker, the renderer does.
	Optimize(ctx context.Context, prompt string, maxTokens int32) (string, error)
	// GenerateJSON runs a call with a JSON response MIME type and strips
	// any markdown fences the model wraps the payload in anyway.
	GenerateJSON(ctx context.Context, prompt, system string, tier ModelTier) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// GeminiClient implements Client on Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewClient creates a Gemini-backed client. A missing API key fails here,
// before any session work starts.
func NewClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if apiKey == "" {
		return nil, &AuthError{Message: "API key is required"}
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config}, nil
}

// Optimize generates the tailored CV. Temperature is fixed low so the
// structural YAML output stays stable across retries.
func (c *GeminiClient) Optimize(ctx context.Context, prompt string, maxTokens int32) (string, error) {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	modelName := c.config.GetModel(TierAdvanced)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", TierAdvanced)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.SetMaxOutputTokens(maxTokens)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.OptimizationSystem())},
	}

	text, err := c.generateWithRetry(ctx, model, prompt)
	if err != nil {
		return "", &GenerationError{Model: modelName, Cause: err}
	}
	return text, nil
}

// GenerateJSON generates JSON content using the specified model tier.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt, system string, tier ModelTier) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", fmt.Errorf("no model configured for tier %s", tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1)
	model.ResponseMIMEType = "application/json"
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}

	text, err := c.generateWithRetry(ctx, model, prompt)
	if err != nil {
		return "", &GenerationError{Model: modelName, Cause: err}
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// generateWithRetry runs one logical generation as up to maxAttempts
// provider calls. Permanent errors (bad credential, malformed request)
// propagate on the first attempt.
func (c *GeminiClient) generateWithRetry(ctx context.Context, model *genai.GenerativeModel, prompt string) (string, error) {
	backoff := retry.NewExponential(initialBackoff)
	backoff = retry.WithJitter(backoffJitter, backoff)
	backoff = retry.WithMaxRetries(maxAttempts-1, backoff)

	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, callTimeout)
		defer cancel()

		resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
		if err != nil {
			if isRetryable(err) {
				return retry.RetryableError(err)
			}
			return err
		}

		text, err = extractTextFromResponse(resp)
		return err
	})
	return text, err
}

// extractTextFromResponse concatenates the text parts of the first
// candidate.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
