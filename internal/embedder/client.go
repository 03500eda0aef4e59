package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"docforge/internal/config"
)

type embedReq struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResp struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// embedText calls the configured embedding endpoint (OpenAI-compatible wire
// format) and returns one embedding per input string.
func embedText(ctx context.Context, cfg config.EmbeddingConfig, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("no inputs")
	}
	reqBody, err := json.Marshal(embedReq{Model: cfg.Model, Input: inputs})
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	url := cfg.BaseURL + cfg.Path
	req, err := http.NewRequestWithContext(cctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	if cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embedding response body: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("embeddings error: %s: %s", resp.Status, string(bodyBytes))
	}

	var er embedResp
	if err := json.Unmarshal(bodyBytes, &er); err != nil {
		n := len(bodyBytes)
		if n > 200 {
			n = 200
		}
		return nil, fmt.Errorf("parse embedding response (input count: %d, response: %s): %w", len(inputs), string(bodyBytes[:n]), err)
	}
	if len(er.Data) != len(inputs) {
		return nil, fmt.Errorf("unexpected embedding count: got %d, want %d", len(er.Data), len(inputs))
	}
	out := make([][]float32, len(er.Data))
	for i := range er.Data {
		out[i] = er.Data[i].Embedding
	}
	return out, nil
}

// checkReachability verifies the embedding endpoint responds to a trivial
// probe request; used by the runner's optional validate() step.
func checkReachability(ctx context.Context, cfg config.EmbeddingConfig) error {
	if _, err := embedText(ctx, cfg, []string{"ping"}); err != nil {
		return fmt.Errorf("embedding endpoint reachability check failed: %w", err)
	}
	return nil
}
