package censor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var ErrUnexpectedStatus = fmt.Errorf("unexpected censorship service status")

// Client asks a censorship service whether a text is acceptable. The service
// answers POST /check with 200 for clean text and 422 for banned text.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type checkRequest struct {
	Text string `json:"text"`
}

func (c *Client) Banned(ctx context.Context, text string) (bool, error) {
	target, err := url.JoinPath(c.baseURL, "check")
	if err != nil {
		return false, fmt.Errorf("invalid censorship service URL %q: %w", c.baseURL, err)
	}

	b, err := json.Marshal(checkRequest{Text: text})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(b))
	if err != nil {
		return false, fmt.Errorf("error creating request to censorship service: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("error calling censorship service: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return false, nil
	case http.StatusUnprocessableEntity:
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
}
