package ai

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/pkg/ai/formatters"
)

type flakyTransport struct {
	failures int32
	calls    atomic.Int32
	bodies   []string
}

func (f *flakyTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	b, _ := io.ReadAll(r.Body)
	f.bodies = append(f.bodies, string(b))
	if n <= f.failures {
		return nil, errors.New("connection refused")
	}
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(`{"agent":"auto","output":"{\"summary\":\"ok\"}"}`)),
		Request:    r,
	}, nil
}

func testClient(tr http.RoundTripper) *Client {
	c := NewClient("http://ai.test", "English")
	c.HTTP = &http.Client{Transport: tr}
	c.Backoff = time.Millisecond
	return c
}

func TestRetriesTransportErrors(t *testing.T) {
	tr := &flakyTransport{failures: 2}
	res, err := testClient(tr).NewSummaryRewriter().Rewrite(context.Background(), formattersSummaryReq())
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary != "ok" || tr.calls.Load() != 3 {
		t.Fatalf("summary %q after %d calls", res.Summary, tr.calls.Load())
	}
	for i, b := range tr.bodies {
		if b == "" || b != tr.bodies[0] {
			t.Errorf("attempt %d sent body %q", i+1, b)
		}
	}
}

func TestGivesUpAfterAttempts(t *testing.T) {
	tr := &flakyTransport{failures: 10}
	_, err := testClient(tr).NewSummaryRewriter().Rewrite(context.Background(), formattersSummaryReq())
	if err == nil {
		t.Fatal("expected error")
	}
	if got := tr.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestDefaults(t *testing.T) {
	c := NewClient("", "")
	if c.BaseURL != DefaultBaseURL || c.Language != "English" {
		t.Errorf("client %+v", c)
	}
}

func formattersSummaryReq() formatters.SummaryRequest {
	return formatters.SummaryRequest{JobDescription: "Go"}
}
