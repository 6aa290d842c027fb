package inference

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/curationd/taxora/internal/common"
	"github.com/curationd/taxora/internal/service"
)

// openaiEmbedder implements service.EmbeddingProvider against the OpenAI
// embeddings API.
type openaiEmbedder struct {
	httpClient *http.Client
	apiKey     string
	model      string
}

func newOpenAIEmbedder(cfg ProviderConfig) (service.EmbeddingProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai API key", common.ErrMissingConfig)
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &openaiEmbedder{
		apiKey: cfg.APIKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// Embed requests one embedding vector for the given text.
func (e *openaiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	requestBody := map[string]any{
		"model": e.model,
		"input": text,
	}

	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.openai.com/v1/embeddings", strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, common.ErrRateLimit
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: embeddings API error (status %d): %s", common.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	var response embeddingResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}

	if len(response.Data) == 0 || len(response.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding in response", common.ErrMalformedResponse)
	}

	return response.Data[0].Embedding, nil
}
