package formatters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

type KeywordRequest struct {
	Resume         json.RawMessage `json:"resume"`
	JobDescription string          `json:"jobDescription"`
}

type KeywordResult struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
	// Score is the share of job keywords present in the resume, 0-100.
	Score float64 `json:"score"`
}

// KeywordAnalyzer compares a resume against a job description.
type KeywordAnalyzer struct {
	client   Doer
	baseURL  string
	language string
}

func NewKeywordAnalyzer(client Doer, baseURL, language string) *KeywordAnalyzer {
	return &KeywordAnalyzer{client: client, baseURL: baseURL, language: language}
}

func (ka *KeywordAnalyzer) Analyze(ctx context.Context, in KeywordRequest) (*KeywordResult, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, errors.New("keyword analysis needs a job description")
	}
	instr := fmt.Sprintf("Return ONLY a single JSON object {\"matched\": [string], \"missing\": [string], \"score\": number}.\n\n"+
		"- matched: skills and keywords from the job description that the resume shows\n"+
		"- missing: important job keywords absent from the resume\n"+
		"- score: 0-100, the share of important keywords matched\n"+
		"- keywords are short noun phrases in %s\n", ka.language)
	userCtx := map[string]any{"payload": in, "instructions": instr}

	output, err := chat(ctx, ka.client, ka.baseURL, "keywords", "Analyze resume keywords:\n"+mustMarshal(userCtx))
	if err != nil {
		return nil, err
	}
	var out KeywordResult
	if err := decodeOutput(output, &out); err != nil {
		return nil, err
	}
	out.Matched = cleanList(out.Matched)
	out.Missing = cleanList(out.Missing)
	out.Score = min(max(out.Score, 0), 100)
	return &out, nil
}

// cleanList trims entries, drops blanks and case-insensitive duplicates.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}
