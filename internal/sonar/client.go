// Package sonar provides a client for the SonarQube Web API.
package sonar

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"sonartools.dev/sonar-tools/internal/errors"
)

// APIPageSize is the page size used for all paged searches, the maximum
// the platform accepts
const APIPageSize = 500

// Paging is the paging envelope returned by paged Web API endpoints
type Paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// Pages returns the number of pages needed to fetch total items
func Pages(total int) int {
	return (total + APIPageSize - 1) / APIPageSize
}

// Client talks to one SonarQube platform instance
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu      sync.Mutex
	version *Version
	edition string
}

// NewClient creates a client for the platform at rawURL, authenticating
// with a bearer token
func NewClient(ctx context.Context, rawURL, token string) (*Client, error) {
	if rawURL == "" {
		return nil, errors.ErrNoURL
	}
	if token == "" {
		return nil, errors.ErrNoToken
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := oauth2.NewClient(ctx, ts)
	httpClient.Timeout = 60 * time.Second

	return &Client{
		baseURL:    strings.TrimRight(rawURL, "/"),
		httpClient: httpClient,
	}, nil
}

// URL returns the base URL of the platform
func (c *Client) URL() string {
	return c.baseURL
}

// Get performs a GET on a Web API endpoint (e.g. "projects/search") and
// decodes the JSON response into out. A nil out discards the body.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	body, err := c.do(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}

// GetText performs a GET and returns the raw response body, for endpoints
// that return plain text (api/server/version)
func (c *Client) GetText(ctx context.Context, endpoint string, params url.Values) (string, error) {
	body, err := c.do(ctx, http.MethodGet, endpoint, params)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Post performs a POST on a Web API endpoint with form-encoded parameters
func (c *Client) Post(ctx context.Context, endpoint string, params url.Values) error {
	_, err := c.do(ctx, http.MethodPost, endpoint, params)
	return err
}

// do issues the request, retrying once on a server error or transport
// failure. Client errors are never retried.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	body, err := c.doOnce(ctx, method, endpoint, params)
	if err == nil {
		return body, nil
	}
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return nil, err
	}
	if ctx.Err() != nil {
		return nil, err
	}
	time.Sleep(500 * time.Millisecond)
	return c.doOnce(ctx, method, endpoint, params)
}

func (c *Client) doOnce(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	apiURL := fmt.Sprintf("%s/api/%s", c.baseURL, endpoint)

	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, apiURL, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		if len(params) > 0 {
			apiURL += "?" + params.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, apiURL, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}

	if resp.StatusCode/100 != 2 {
		return nil, errors.NewAPIError(resp.StatusCode, endpoint, apiErrorMessage(body))
	}
	return body, nil
}

// apiErrorMessage extracts the error messages the Web API returns as
// {"errors": [{"msg": "..."}]}
func apiErrorMessage(body []byte) string {
	var payload struct {
		Errors []struct {
			Msg string `json:"msg"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Errors) == 0 {
		return strings.TrimSpace(string(body))
	}
	msgs := make([]string, len(payload.Errors))
	for i, e := range payload.Errors {
		msgs[i] = e.Msg
	}
	return strings.Join(msgs, "; ")
}
