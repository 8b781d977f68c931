package preview

import (
	"strings"
	"testing"

	"resume-builder/internal/markup"
	"resume-builder/internal/pagination"
)

func TestRenderStackOffsetsEachFrame(t *testing.T) {
	r, err := markup.Render(testDoc())
	if err != nil {
		t.Fatal(err)
	}
	g := pagination.Geometry{PageWidthPx: 800, PageHeightPx: 1100, MarginPx: 50}
	html, err := RenderStack(r, pagination.Result{Pages: 3, Confidence: pagination.ConfidenceApproximate}, g, 1)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"translateY(-0.00px)",
		"translateY(-1000.00px)",
		"translateY(-2000.00px)",
		`data-pages="3"`,
		`data-confidence="approximate"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("stack html missing %q", want)
		}
	}
	if n := strings.Count(html, "Shipped the billing platform"); n != 3 {
		t.Errorf("content block repeated %d times, want once per frame", n)
	}
}

func TestRenderStackNil(t *testing.T) {
	if _, err := RenderStack(nil, pagination.Result{}, pagination.DefaultGeometry(), 1); err == nil {
		t.Fatal("expected error")
	}
}
