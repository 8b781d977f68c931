package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"resume-builder/internal/markup"
	"resume-builder/internal/pagination"
)

//go:embed templates/stack.gohtml
var templateFS embed.FS

var stackTpl = template.Must(template.ParseFS(templateFS, "templates/stack.gohtml"))

type frame struct {
	Number       int
	PageStyle    template.CSS
	WindowStyle  template.CSS
	ContentStyle template.CSS
}

// RenderStack lays the single content block out once per page. Each page
// frame clips a window of content height and shifts the block up by the
// window offset, so frame i shows [i·h, (i+1)·h).
func RenderStack(r *markup.Rendered, res pagination.Result, g pagination.Geometry, zoom float64) (string, error) {
	if r == nil {
		return "", fmt.Errorf("preview: nothing to render")
	}
	windows := pagination.Windows(res, g)
	frames := make([]frame, len(windows))
	for i, w := range windows {
		frames[i] = frame{
			Number: w.Index + 1,
			PageStyle: template.CSS(fmt.Sprintf("width: %.2fpx; height: %.2fpx;",
				g.PageWidthPx, g.PageHeightPx)),
			WindowStyle: template.CSS(fmt.Sprintf("left: %.2fpx; top: %.2fpx; width: %.2fpx; height: %.2fpx;",
				g.MarginPx, g.MarginPx, g.ContentWidthPx(), w.HeightPx)),
			ContentStyle: template.CSS(fmt.Sprintf("width: %.2fpx; transform: translateY(-%.2fpx);",
				g.ContentWidthPx(), w.OffsetPx)),
		}
	}

	var buf bytes.Buffer
	err := stackTpl.Execute(&buf, map[string]any{
		"Title":      r.Title,
		"FontURL":    r.Style.WebFontURL(),
		"Stylesheet": r.Stylesheet,
		"Layout":     r.Style.Layout,
		"Body":       r.Body,
		"Frames":     frames,
		"Confidence": res.Confidence,
		"StackStyle": template.CSS(fmt.Sprintf("transform: scale(%.4f);", zoom)),
	})
	if err != nil {
		return "", fmt.Errorf("preview: execute stack template: %w", err)
	}
	return buf.String(), nil
}
