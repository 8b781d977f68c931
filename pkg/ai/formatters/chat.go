// Package formatters holds the single-purpose prompts sent to the
// ai-service. Each one posts {agent, input} to /v1/chat and decodes a JSON
// object out of the reply's output text.
package formatters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// Doer sends HTTP requests; *http.Client and the retrying ai.Client both fit.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

var ErrEmptyOutput = errors.New("ai-service returned an empty result")

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// chat posts one prompt and returns the raw output text.
func chat(ctx context.Context, client Doer, baseURL, name, input string) (string, error) {
	b, err := json.Marshal(chatRequest{Agent: "auto", Input: input})
	if err != nil {
		return "", err
	}
	slog.Debug("ai.client: POST /v1/chat", "formatter", name, "bytes", len(b))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/v1/chat", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	slog.Debug("ai.client: response", "formatter", name, "status", resp.StatusCode, "bytes", len(rb))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(rb, &cr); err != nil {
		return "", err
	}
	return cr.Output, nil
}

// decodeOutput unmarshals output into v. Output wrapped in prose or code
// fences is reduced to the span between the first '{' and the last '}'.
func decodeOutput(output string, v any) error {
	err := json.Unmarshal([]byte(output), v)
	if err == nil {
		return nil
	}
	start := strings.IndexByte(output, '{')
	end := strings.LastIndexByte(output, '}')
	if start >= 0 && end > start {
		if err2 := json.Unmarshal([]byte(output[start:end+1]), v); err2 == nil {
			return nil
		}
	}
	return fmt.Errorf("ai-service returned non-json content: %w", err)
}

func mustMarshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(b)
}
