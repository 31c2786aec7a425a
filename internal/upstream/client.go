// Package upstream is the client for the records API that owns result and
// news CRUD, authentication and file storage. The gateway only consumes it.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/resulta/resulta-gateway/internal/model"
)

// Error is a failed upstream call. Every Error is retryable by user action;
// the gateway never retries automatically.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("upstream: %s (status %d)", e.Message, e.StatusCode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Client talks to the upstream records API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient creates a Client for the given base URL.
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "upstream_client").Logger(),
	}
}

// FetchResults retrieves the flat result-record list. Query params are
// passed through untouched; all view-building happens gateway-side.
func (c *Client) FetchResults(ctx context.Context, token string, params url.Values) ([]model.ResultRecord, error) {
	var records []model.ResultRecord
	if err := c.get(ctx, "/results", token, params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchNews retrieves the flat news feed.
func (c *Client) FetchNews(ctx context.Context, token string, params url.Values) ([]model.NewsRecord, error) {
	var records []model.NewsRecord
	if err := c.get(ctx, "/news", token, params, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchSubjects retrieves a student's flat subject list for the grouped view.
func (c *Client) FetchSubjects(ctx context.Context, token string, params url.Values) ([]model.Subject, error) {
	var subjects []model.Subject
	if err := c.get(ctx, "/subjects", token, params, &subjects); err != nil {
		return nil, err
	}
	return subjects, nil
}

// MarkRead records upstream that the user has read one news item.
func (c *Client) MarkRead(ctx context.Context, token, itemID, userKey string) error {
	endpoint := fmt.Sprintf("%s/news/%s/read", c.baseURL, url.PathEscape(itemID))
	body := strings.NewReader(fmt.Sprintf(`{"user_key":%q}`, userKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	setAuth(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		return &Error{StatusCode: resp.StatusCode, Message: failureMessage(env)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path, token string, params url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	setAuth(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("upstream request failed")
		return &Error{StatusCode: 0, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed response"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 || !env.Success {
		c.log.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("upstream call unsuccessful")
		return &Error{StatusCode: resp.StatusCode, Message: failureMessage(env)}
	}

	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{StatusCode: resp.StatusCode, Message: "malformed data payload"}
	}
	return nil
}

func setAuth(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func failureMessage(env envelope) string {
	if env.Message != "" {
		return env.Message
	}
	return "request failed"
}
