// Package yolo implements detect.Detector against the YOLO-World detection
// service: POST /detect with a base64 image, GET /health for liveness.
package yolo

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/amosley/fridgechef/internal/detect"
	"github.com/amosley/fridgechef/internal/remote"
)

type Client struct {
	baseURL       string
	client        *remote.Client
	healthTimeout time.Duration
}

func NewClient(baseURL string, timeout, healthTimeout time.Duration, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		baseURL:       baseURL,
		client:        remote.NewClient("detection service", timeout, maxRetries, backoff),
		healthTimeout: healthTimeout,
	}
}

type detectRequest struct {
	ImageBase64 string `json:"image_base64"`
}

// detectResponse carries both field names the service has emitted across
// versions; Labels wins when both are present.
type detectResponse struct {
	Labels      []string  `json:"labels"`
	Ingredients []string  `json:"ingredients_detected"`
	Confidences []float64 `json:"confidences"`
}

func (c *Client) Detect(ctx context.Context, image []byte) (*detect.Result, error) {
	req := detectRequest{ImageBase64: base64.StdEncoding.EncodeToString(image)}

	var resp detectResponse
	if err := c.client.PostJSON(ctx, c.baseURL+"/detect", req, &resp); err != nil {
		return nil, err
	}

	labels := resp.Labels
	if len(labels) == 0 {
		labels = resp.Ingredients
	}
	labels = detect.CleanLabels(labels)

	confidences := resp.Confidences
	if len(confidences) != len(labels) {
		confidences = nil
	}

	return &detect.Result{Labels: labels, Confidences: confidences}, nil
}

func (c *Client) Health(ctx context.Context) bool {
	return remote.Probe(ctx, c.baseURL+"/health", c.healthTimeout)
}
