package ai

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"resume-builder/pkg/ai/formatters"
)

const DefaultBaseURL = "http://ai-service:8000"

// Client calls the ai-service chat endpoint. Transport errors are retried
// with exponential backoff; HTTP error statuses are returned as they are.
type Client struct {
	BaseURL  string
	HTTP     *http.Client
	Language string
	Attempts int
	Backoff  time.Duration
}

func NewClient(baseURL, language string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if language == "" {
		language = "English"
	}
	return &Client{
		BaseURL:  baseURL,
		HTTP:     &http.Client{Timeout: 60 * time.Second},
		Language: language,
		Attempts: 3,
		Backoff:  time.Second,
	}
}

func (c *Client) NewSummaryRewriter() *formatters.SummaryRewriter {
	return formatters.NewSummaryRewriter(c, c.BaseURL, c.Language)
}

func (c *Client) NewKeywordAnalyzer() *formatters.KeywordAnalyzer {
	return formatters.NewKeywordAnalyzer(c, c.BaseURL, c.Language)
}

func (c *Client) NewAchievementRewriter() *formatters.AchievementRewriter {
	return formatters.NewAchievementRewriter(c, c.BaseURL, c.Language)
}

func (c *Client) NewLabelsFormatter(language string) *formatters.LabelsFormatter {
	if language == "" {
		language = c.Language
	}
	return formatters.NewLabelsFormatter(c, c.BaseURL, language)
}

// Do sends req, retrying transport errors. The request body is rewound
// with GetBody before each retry.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	attempts := max(c.Attempts, 1)
	ctx := req.Context()
	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			if req.GetBody == nil {
				return nil, lastErr
			}
			body, err := req.GetBody()
			if err != nil {
				return nil, err
			}
			req.Body = body
		}
		resp, err := c.HTTP.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		slog.Warn("ai.client: request failed", "url", req.URL.String(), "attempt", i+1, "error", err)
		// exponential backoff before retrying
		if i < attempts-1 {
			backoff := c.Backoff * time.Duration(1<<i)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return nil, lastErr
}
