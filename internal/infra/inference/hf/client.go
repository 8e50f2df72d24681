package hf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultEndpoint = "https://router.huggingface.co/hf-inference/models"

// ErrDisabled is returned by Init when the local backend is switched off.
var ErrDisabled = errors.New("local inference disabled")

// StatusError carries a non-2xx response from the inference API.
type StatusError struct {
	Model  string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hf inference %s: status %d: %s", e.Model, e.Status, e.Body)
}

type Config struct {
	Enabled  bool
	Endpoint string
	Token    string
	Timeout  time.Duration
}

// client is the shared HTTP transport for every pipeline.
type client struct {
	base  *url.URL
	token string
	http  *http.Client
}

func newClient(cfg Config) (*client, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	base, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid inference endpoint %q", endpoint)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &client{base: base, token: cfg.Token, http: &http.Client{Timeout: timeout}}, nil
}

func (c *client) modelURL(model string) string {
	return c.base.String() + "/" + model
}

func (c *client) do(ctx context.Context, method, model, contentType string, body []byte, out any) error {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.modelURL(model), rd)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Wait-For-Model", "true")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("hf inference %s: %w", model, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("hf inference %s: read body: %w", model, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{Model: model, Status: resp.StatusCode, Body: truncate(string(raw), 200)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("hf inference %s: decode: %w", model, err)
	}
	return nil
}

func (c *client) postJSON(ctx context.Context, model string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, model, "application/json", body, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
