// Package slack delivers report notifications to a Slack incoming webhook.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// Client posts messages to a Slack incoming webhook. It handles transport
// retries only; a run that fails to deliver reports the error and does not
// re-orchestrate delivery.
type Client struct {
	webhookURL string
	http       *retryablehttp.Client
}

// NewClient creates a webhook client.
func NewClient(webhookURL string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	return &Client{
		webhookURL: webhookURL,
		http:       retryClient,
	}
}

// Send posts the message payload. Slack webhooks answer a bare "ok" on
// success; anything else is a delivery failure.
func (c *Client) Send(ctx context.Context, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode slack message: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, "POST", c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send slack message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read slack response: %w", err)
	}

	if resp.StatusCode != 200 || strings.TrimSpace(string(body)) != "ok" {
		return fmt.Errorf("slack webhook rejected message: status %d, body %q", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
