// Package claude implements generate.Generator on the Anthropic Messages API
// via the go-anthropic SDK. Errors are mapped onto the shared remote taxonomy
// so the orchestrator treats both generation backends identically.
package claude

import (
	"context"
	"errors"
	"time"

	"github.com/liushuangls/go-anthropic/v2"

	"github.com/amosley/fridgechef/internal/remote"
)

const serviceName = "generation service"

// maxTokens bounds a single reply; recipes with steps fit comfortably.
const maxTokens = 1024

type Client struct {
	api        *anthropic.Client
	apiKey     string
	model      string
	maxRetries int
	backoff    time.Duration
}

func NewClient(apiKey, model string, maxRetries int, backoff time.Duration) *Client {
	return &Client{
		api:        anthropic.NewClient(apiKey),
		apiKey:     apiKey,
		model:      model,
		maxRetries: maxRetries,
		backoff:    backoff,
	}
}

func (c *Client) Generate(ctx context.Context, prompt string, image []byte) (string, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		MaxTokens: maxTokens,
		Messages:  []anthropic.Message{buildMessage(prompt, image)},
	}

	attempts := c.maxRetries + 1
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &remote.UnavailableError{Service: serviceName, Attempts: attempt, Err: ctx.Err()}
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}

		resp, err := c.api.CreateMessages(ctx, req)
		if err == nil {
			return resp.GetFirstContentText(), nil
		}

		// A response from the API is final; only transport failures retry.
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			return "", &remote.StatusError{Service: serviceName, StatusCode: 0, Body: apiErr.Message}
		}
		var reqErr *anthropic.RequestError
		if errors.As(err, &reqErr) {
			return "", &remote.StatusError{Service: serviceName, StatusCode: reqErr.StatusCode, Body: reqErr.Error()}
		}
		lastErr = err
	}

	return "", &remote.UnavailableError{Service: serviceName, Attempts: attempts, Err: lastErr}
}

func buildMessage(prompt string, image []byte) anthropic.Message {
	if len(image) == 0 {
		return anthropic.NewUserTextMessage(prompt)
	}
	return anthropic.Message{
		Role: anthropic.RoleUser,
		Content: []anthropic.MessageContent{
			anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
				anthropic.MessagesContentSourceTypeBase64, "image/jpeg", image)),
			anthropic.NewTextMessageContent(prompt),
		},
	}
}

// Health reports whether the client is usable. The Anthropic API exposes no
// liveness endpoint, so this only checks that an API key is configured.
func (c *Client) Health(_ context.Context) bool {
	return c.apiKey != ""
}
