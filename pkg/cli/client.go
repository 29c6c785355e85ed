package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a thin HTTP client for the querygate REST API.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a Client for the given host. A trailing slash on the
// host is stripped.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	HTTPStatus   int
	Code         int    `json:"code"`
	Message      string `json:"message"`
	ReviewStatus string `json:"reviewStatus,omitempty"`
}

func (e *APIError) Error() string {
	if e.ReviewStatus != "" {
		return fmt.Sprintf("%s (review status: %s)", e.Message, e.ReviewStatus)
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server returned HTTP %d", e.HTTPStatus)
}

// Do issues a request against the /v1 API. body, when non-nil, is JSON
// encoded. The caller owns the response body.
func (c *Client) Do(method, path string, query url.Values, body interface{}) (*http.Response, error) {
	u := c.BaseURL + "/v1" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	return c.HTTPClient.Do(req)
}

// DoJSON issues a request and decodes the JSON response into out.
// Non-2xx responses are returned as *APIError.
func (c *Client) DoJSON(method, path string, query url.Values, body, out interface{}) error {
	resp, err := c.Do(method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 400 {
		apiErr := &APIError{HTTPStatus: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = ""
		}
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Wire types mirroring the server's JSON responses.

type executionRequest struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Type         string    `json:"type"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Statement    string    `json:"statement"`
	ReadOnly     bool      `json:"readOnly"`
	AuthorID     string    `json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	ReviewStatus string    `json:"reviewStatus,omitempty"`
}

type requestEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	AuthorID  string    `json:"authorId"`
	CreatedAt time.Time `json:"createdAt"`
	Comment   string    `json:"comment,omitempty"`
	Action    string    `json:"action,omitempty"`
	Query     string    `json:"query,omitempty"`
	Command   string    `json:"command,omitempty"`
}

type executionRequestDetail struct {
	executionRequest
	Events []requestEvent `json:"events"`
}

type connection struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Type            string    `json:"type"`
	ReviewsRequired int       `json:"reviewsRequired"`
	CreatedAt       time.Time `json:"createdAt"`
}

type user struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	IsAdmin     bool      `json:"isAdmin"`
	CreatedAt   time.Time `json:"createdAt"`
}
