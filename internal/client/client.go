// Package client talks to the variant REST API. A Client can back a wizard
// as both its record source and its submitter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/store"
	"github.com/FA25-SWP391-SE1839-Group5/evdms/internal/types"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Is matches store.ErrNotFound for 404 responses.
func (e *APIError) Is(target error) bool {
	return target == store.ErrNotFound && e.Status == http.StatusNotFound
}

// Client is an HTTP client for the /v1 variant endpoints.
type Client struct {
	BaseURL string
	Actor   string
	Source  string
	HTTP    *http.Client
}

// New returns a client for baseURL acting as actor.
func New(baseURL, actor string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Actor:   actor,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Get fetches one variant.
func (c *Client) Get(ctx context.Context, id string) (*types.VariantRecord, error) {
	var rec types.VariantRecord
	if err := c.do(ctx, http.MethodGet, "/v1/variants/"+url.PathEscape(id), nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Create posts a new variant.
func (c *Client) Create(ctx context.Context, p *types.WirePayload) (*types.VariantRecord, error) {
	var rec types.VariantRecord
	if err := c.do(ctx, http.MethodPost, "/v1/variants", p, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Update replaces an existing variant.
func (c *Client) Update(ctx context.Context, id string, p *types.WirePayload) (*types.VariantRecord, error) {
	var rec types.VariantRecord
	if err := c.do(ctx, http.MethodPut, "/v1/variants/"+url.PathEscape(id), p, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Actor != "" {
		req.Header.Set("X-Actor", c.Actor)
	}
	if c.Source != "" {
		req.Header.Set("X-Source", c.Source)
	}

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeError extracts the message from an error body. Both {"error": ...}
// and {"message": ...} shapes are accepted.
func decodeError(resp *http.Response) error {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: fmt.Sprintf("request failed: %d", resp.StatusCode),
	}
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Code = body.Code
		switch {
		case body.Message != "":
			apiErr.Message = body.Message
		case body.Error != "":
			apiErr.Message = body.Error
		}
	}
	return apiErr
}
