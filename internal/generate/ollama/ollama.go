// Package ollama implements generate.Generator against the Ollama generate
// API: POST /api/generate (non-streaming), GET /api/tags for liveness.
package ollama

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/amosley/fridgechef/internal/remote"
)

type Client struct {
	host          string
	model         string
	client        *remote.Client
	healthTimeout time.Duration
}

func NewClient(host, model string, timeout, healthTimeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		host:          strings.TrimRight(host, "/"),
		model:         model,
		client:        remote.NewClient("generation service", timeout, maxRetries, backoff),
		healthTimeout: healthTimeout,
	}
}

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images,omitempty"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (c *Client) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	req := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	}
	if len(image) > 0 {
		req.Images = []string{base64.StdEncoding.EncodeToString(image)}
	}

	var resp generateResponse
	if err := c.client.PostJSON(ctx, c.host+"/api/generate", req, &resp); err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Response), nil
}

func (c *Client) Health(ctx context.Context) bool {
	return remote.Probe(ctx, c.host+"/api/tags", c.healthTimeout)
}
