package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Tier selects which logical model answers a prompt.
type Tier string

const (
	// TierScout is the fast/cheap model used for per-chunk screening.
	TierScout Tier = "scout"
	// TierSynth is the strong model used for synthesis and repair.
	TierSynth Tier = "synth"
)

// TextGenerator is the single operation the pipeline needs from a model
// provider. Implemented by ModelService; faked in tests.
type TextGenerator interface {
	Generate(ctx context.Context, tier Tier, systemPrompt, userPrompt string) (string, error)
}

// ModelError wraps a failed model call with its retryability classification.
// Rate limits and provider hiccups are retryable; a request the provider
// rejected as malformed can never succeed and is not.
type ModelError struct {
	StatusCode int
	Message    string
	retryable  bool
}

func (e *ModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model call failed: HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("model call failed: %s", e.Message)
}

// Retryable reports whether retrying the same request can help.
func (e *ModelError) Retryable() bool {
	return e.retryable
}

// ModelConfig holds configuration for the model service.
type ModelConfig struct {
	APIKey     string
	BaseURL    string
	ScoutModel string
	SynthModel string
}

// ModelService calls an OpenAI-compatible chat completion endpoint with a
// fast and a strong model behind one Generate operation.
type ModelService struct {
	client     *resty.Client
	endpoint   string
	scoutModel string
	synthModel string
}

// NewModelService creates a new model service.
// Parameters:
//   - cfg: model configuration including API key and the two model tiers.
//
// Returns:
//   - *ModelService: initialized model client wrapper.
func NewModelService(cfg *ModelConfig) *ModelService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	// Set timeout to prevent hanging requests
	client.SetTimeout(120 * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &ModelService{
		client:     client,
		endpoint:   baseURL + "/chat/completions",
		scoutModel: cfg.ScoutModel,
		synthModel: cfg.SynthModel,
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (s *ModelService) model(tier Tier) string {
	if tier == TierSynth {
		return s.synthModel
	}
	return s.scoutModel
}

func (s *ModelService) maxTokens(tier Tier) int {
	if tier == TierSynth {
		return 4000
	}
	return 800
}

// Generate issues one chat completion and returns the raw response text.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tier: which model tier answers the prompt.
//   - systemPrompt: role instructions.
//   - userPrompt: the content to analyze.
//
// Returns:
//   - string: generated text.
//   - error: *ModelError carrying the retryability classification.
func (s *ModelService) Generate(ctx context.Context, tier Tier, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: s.model(tier),
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   s.maxTokens(tier),
		Temperature: 0.2,
	}

	var resp chatResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)

	if err != nil {
		// transport-level failure, worth retrying
		return "", &ModelError{Message: err.Error(), retryable: true}
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		msg := string(httpResp.Body())
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return "", &ModelError{
			StatusCode: httpResp.StatusCode(),
			Message:    msg,
			retryable:  classifyStatus(httpResp.StatusCode()),
		}
	}

	if resp.Error != nil {
		return "", &ModelError{Message: resp.Error.Message, retryable: true}
	}

	if len(resp.Choices) == 0 {
		return "", &ModelError{
			StatusCode: httpResp.StatusCode(),
			Message:    fmt.Sprintf("no choices in response, body: %s", string(httpResp.Body())),
			retryable:  true,
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyStatus decides retryability from the HTTP status. A 400/422 means
// the request itself is malformed; retrying burns the backoff budget for
// nothing, so those propagate immediately.
func classifyStatus(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return false
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return false
	default:
		return true
	}
}
