package formatters

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type SummaryRequest struct {
	Resume         json.RawMessage `json:"resume"`
	JobDescription string          `json:"jobDescription"`
}

type SummaryResult struct {
	Summary string `json:"summary"`
}

// SummaryRewriter drafts a professional summary for a resume, optionally
// targeted at a job description.
type SummaryRewriter struct {
	client   Doer
	baseURL  string
	language string
}

func NewSummaryRewriter(client Doer, baseURL, language string) *SummaryRewriter {
	return &SummaryRewriter{client: client, baseURL: baseURL, language: language}
}

func (sr *SummaryRewriter) Rewrite(ctx context.Context, in SummaryRequest) (*SummaryResult, error) {
	instr := fmt.Sprintf("LANGUAGE: Write in %s.\n\nReturn ONLY a single JSON object {\"summary\": string}.\n\n"+
		"- summary: 150-300 characters of plain text, no markdown\n"+
		"- ground every claim in the resume; do not invent employers, titles or numbers\n"+
		"- when a job description is given, emphasise the overlap with it\n", sr.language)
	userCtx := map[string]any{"payload": in, "instructions": instr}

	output, err := chat(ctx, sr.client, sr.baseURL, "summary", "Write a resume summary:\n"+mustMarshal(userCtx))
	if err != nil {
		return nil, err
	}
	var out SummaryResult
	if err := decodeOutput(output, &out); err != nil {
		return nil, err
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return nil, ErrEmptyOutput
	}
	return &out, nil
}
