package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/anthropics/swarmrun/runtime/contracts"
)

// HTTPProviderClient implements contracts.ProviderClient against a generic
// chat-completion HTTP endpoint (the concrete LM provider SDK is out of
// scope; this is the one concrete adapter the composition
// root wires by default).
type HTTPProviderClient struct {
	ProviderName contracts.Provider
	BaseURL      string
	APIKey       string
	HTTPClient   *http.Client
}

// NewHTTPProviderClient constructs an HTTPProviderClient with a sane default
// timeout, overridden per call by the context deadline the dispatcher sets.
func NewHTTPProviderClient(provider contracts.Provider, baseURL, apiKey string) *HTTPProviderClient {
	return &HTTPProviderClient{
		ProviderName: provider,
		BaseURL:      baseURL,
		APIKey:       apiKey,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

// Provider implements contracts.ProviderClient.
func (c *HTTPProviderClient) Provider() contracts.Provider { return c.ProviderName }

type chatRequestBody struct {
	Model       contracts.ModelID `json:"model"`
	System      string            `json:"system,omitempty"`
	Prompt      string            `json:"prompt"`
	Temperature float64           `json:"temperature,omitempty"`
	MaxTokens   int               `json:"max_tokens,omitempty"`
}

type chatResponseBody struct {
	Content string `json:"content"`
	Usage   struct {
		InputTokens  int64 `json:"input_tokens"`
		OutputTokens int64 `json:"output_tokens"`
	} `json:"usage"`
}

// Complete implements contracts.ProviderClient.
func (c *HTTPProviderClient) Complete(ctx context.Context, req contracts.CompletionRequest) (contracts.CompletionResponse, error) {
	body, err := json.Marshal(chatRequestBody{
		Model:       req.Model,
		System:      req.SystemPrompt,
		Prompt:      req.Prompt,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return contracts.CompletionResponse{}, fmt.Errorf("%w: marshal request: %v", contracts.ErrProviderError, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return contracts.CompletionResponse{}, fmt.Errorf("%w: build request: %v", contracts.ErrProviderError, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return contracts.CompletionResponse{}, fmt.Errorf("%w: %v", contracts.ErrTimeout, ctx.Err())
		}
		return contracts.CompletionResponse{}, fmt.Errorf("%w: %v", contracts.ErrProviderError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.CompletionResponse{}, fmt.Errorf("%w: read response: %v", contracts.ErrProviderError, err)
	}
	if resp.StatusCode >= 400 {
		return contracts.CompletionResponse{}, fmt.Errorf("%w: provider returned status %d", contracts.ErrProviderError, resp.StatusCode)
	}

	var parsed chatResponseBody
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return contracts.CompletionResponse{}, fmt.Errorf("%w: unmarshal response: %v", contracts.ErrProviderError, err)
	}

	input := contracts.TokenCount(parsed.Usage.InputTokens)
	output := contracts.TokenCount(parsed.Usage.OutputTokens)
	if input == 0 {
		input = estimateTokens(req.SystemPrompt + req.Prompt)
	}
	if output == 0 {
		output = estimateTokens(parsed.Content)
	}

	return contracts.CompletionResponse{
		Text: parsed.Content,
		Tokens: contracts.Tokens{
			Input:  input,
			Output: output,
			Total:  input + output,
		},
	}, nil
}

// estimateTokens approximates token count at ~4 characters per token, used
// whenever the provider omits usage data.
func estimateTokens(s string) contracts.TokenCount {
	if len(s) == 0 {
		return 0
	}
	n := contracts.TokenCount((len(s) + 3) / 4)
	if n < 1 {
		n = 1
	}
	return n
}
