package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	seekerrors "github.com/hyperseek/hyperseek/internal/errors"
)

// OllamaConfig configures the Ollama generation client.
type OllamaConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// OllamaClient generates completions through Ollama's HTTP API.
type OllamaClient struct {
	client    *http.Client
	transport *http.Transport
	config    OllamaConfig
}

var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates a generation client with a pooled transport.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        4,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     10 * time.Second,
	}

	return &OllamaClient{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Complete returns the full completion for prompt.
func (c *OllamaClient) Complete(ctx context.Context, prompt string) (string, error) {
	var sb strings.Builder
	err := c.Stream(ctx, prompt, func(fragment string) error {
		sb.WriteString(fragment)
		return nil
	})
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}

// Stream sends prompt and yields completion fragments as the model
// produces them. Ollama streams newline-delimited JSON objects.
func (c *OllamaClient) Stream(ctx context.Context, prompt string, yield func(string) error) error {
	body, err := json.Marshal(generateRequest{Model: c.config.Model, Prompt: prompt, Stream: true})
	if err != nil {
		return fmt.Errorf("encode generate request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost,
		c.config.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return seekerrors.LLMUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return seekerrors.LLMUnavailable(
			fmt.Errorf("ollama returned %d: %s", resp.StatusCode, data))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var chunk generateResponse
		if err := json.Unmarshal(line, &chunk); err != nil {
			return seekerrors.LLMUnavailable(fmt.Errorf("decode stream chunk: %w", err))
		}
		if chunk.Response != "" {
			if err := yield(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return seekerrors.LLMUnavailable(fmt.Errorf("read stream: %w", err))
	}
	return nil
}

// Close releases idle connections.
func (c *OllamaClient) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}
