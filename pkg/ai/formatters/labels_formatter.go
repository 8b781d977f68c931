package formatters

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// LabelsFormatter translates section headings. Keys match section ids and
// the labels map of the print payload.
type LabelsFormatter struct {
	client   Doer
	baseURL  string
	language string
}

func NewLabelsFormatter(client Doer, baseURL, language string) *LabelsFormatter {
	return &LabelsFormatter{client: client, baseURL: baseURL, language: language}
}

// Format returns translated headings for every default key. Keys the
// service omits or leaves blank keep their English value; unknown keys are
// dropped.
func (lf *LabelsFormatter) Format(ctx context.Context) (map[string]string, error) {
	defaults := GetDefaultLabels()
	keys := slices.Sorted(maps.Keys(defaults))
	instr := fmt.Sprintf("You are a professional resume label translator. Translate section headings to %s.\n\n"+
		"RULES:\n"+
		"1. Return ONLY valid JSON (no markdown, no code blocks, no explanation)\n"+
		"2. Translate VALUES only - keep the KEY names\n"+
		"3. Each value must be a professional heading (1-5 words)\n"+
		"4. Include ALL %d keys: %s\n\nENGLISH:\n%s",
		lf.language, len(keys), strings.Join(keys, ", "), mustMarshal(defaults))

	output, err := chat(ctx, lf.client, lf.baseURL, "labels", "Translate UI labels to "+lf.language+":\n"+instr)
	if err != nil {
		return nil, err
	}
	var got map[string]string
	if err := decodeOutput(output, &got); err != nil {
		return nil, err
	}
	out := defaults
	for k := range out {
		if v := strings.TrimSpace(got[k]); v != "" {
			out[k] = v
		}
	}
	return out, nil
}

// GetDefaultLabels returns English labels as fallback
func GetDefaultLabels() map[string]string {
	return map[string]string{
		"summary":        "Professional Summary",
		"experience":     "Experience",
		"education":      "Education",
		"skills":         "Skills",
		"certifications": "Certifications",
		"achievements":   "Key Achievements",
		"projects":       "Projects",
		"publications":   "Publications",
		"extras":         "Additional Information",
		"tech":           "Tech",
	}
}
