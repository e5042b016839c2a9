// Package upstream is the JSON-over-HTTP client shared by the third-party
// API integrations (classifier, nutrition lookup).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"
)

// AuthFunc decorates an outgoing request with provider credentials.
type AuthFunc func(req *http.Request)

type Client struct {
	name       string
	baseURL    string
	auth       AuthFunc
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient builds a client for one upstream service. Per-call deadlines come
// from the context; the http.Client timeout is only a last-resort bound.
func NewClient(name, baseURL string, auth AuthFunc, logger *logrus.Logger) *Client {
	return &Client{
		name:    name,
		baseURL: baseURL,
		auth:    auth,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) BaseURL() string { return c.baseURL }

// Get issues a GET with the given query parameters and decodes the JSON body into result.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values, result interface{}) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return c.makeRequest(ctx, http.MethodGet, endpoint, nil, result)
}

// Post marshals payload as JSON and decodes the JSON response into result.
func (c *Client) Post(ctx context.Context, endpoint string, payload interface{}, result interface{}) error {
	return c.makeRequest(ctx, http.MethodPost, endpoint, payload, result)
}

func (c *Client) makeRequest(ctx context.Context, method, endpoint string, payload interface{}, result interface{}) error {
	reqURL := c.baseURL + endpoint

	var body io.Reader
	var contentLength int

	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
		contentLength = len(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		c.auth(req)
	}

	// The URL may carry an api_key query parameter, so only the path is logged.
	c.logger.WithFields(logrus.Fields{
		"upstream": c.name,
		"method":   method,
		"path":     req.URL.Path,
		"size":     contentLength,
	}).Debug("Making upstream request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", c.name, err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s response: %w", c.name, err)
	}

	c.logger.WithFields(logrus.Fields{
		"upstream":      c.name,
		"status_code":   resp.StatusCode,
		"method":        method,
		"path":          req.URL.Path,
		"response_size": len(responseBody),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	}).Debug("Upstream response received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if len(responseBody) < 500 {
			c.logger.WithFields(logrus.Fields{
				"upstream":      c.name,
				"status_code":   resp.StatusCode,
				"response_body": string(responseBody),
			}).Debug("Upstream error body")
		}
		return &StatusError{Service: c.name, StatusCode: resp.StatusCode, Body: truncate(string(responseBody), 200)}
	}

	if result != nil {
		if len(responseBody) == 0 {
			return fmt.Errorf("%s returned an empty body: %w", c.name, ErrMalformedResponse)
		}
		if err := json.Unmarshal(responseBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal %s response: %v: %w", c.name, err, ErrMalformedResponse)
		}
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
