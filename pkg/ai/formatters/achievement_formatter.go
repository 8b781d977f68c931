package formatters

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type AchievementRequest struct {
	Bullet  string `json:"bullet"`
	Context string `json:"context"`
}

type AchievementResult struct {
	Bullets []string `json:"bullets"`
}

// AchievementRewriter turns one experience bullet into stronger,
// results-oriented alternatives.
type AchievementRewriter struct {
	client   Doer
	baseURL  string
	language string
}

func NewAchievementRewriter(client Doer, baseURL, language string) *AchievementRewriter {
	return &AchievementRewriter{client: client, baseURL: baseURL, language: language}
}

func (ar *AchievementRewriter) Rewrite(ctx context.Context, in AchievementRequest) (*AchievementResult, error) {
	if strings.TrimSpace(in.Bullet) == "" {
		return nil, errors.New("achievement rewrite needs a bullet")
	}
	instr := fmt.Sprintf("LANGUAGE: Write in %s.\n\nReturn ONLY a single JSON object {\"bullets\": [string]} with 3 alternatives.\n\n"+
		"- start each with a strong action verb\n"+
		"- keep every fact from the original; never invent metrics\n"+
		"- at most 200 characters each, plain text\n", ar.language)
	userCtx := map[string]any{"payload": in, "instructions": instr}

	output, err := chat(ctx, ar.client, ar.baseURL, "achievements", "Rewrite an achievement:\n"+mustMarshal(userCtx))
	if err != nil {
		return nil, err
	}
	var out AchievementResult
	if err := decodeOutput(output, &out); err != nil {
		return nil, err
	}
	out.Bullets = cleanList(out.Bullets)
	if len(out.Bullets) == 0 {
		return nil, ErrEmptyOutput
	}
	return &out, nil
}
